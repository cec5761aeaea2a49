package models

// AvailabilityTemplate is a provider-declared local time window on one date,
// from which concrete bookable slots are derived (§3, §4.1, §4.2).
type AvailabilityTemplate struct {
	ID                    string            `bson:"id" json:"id"`
	ProviderID            string            `bson:"providerId" json:"providerId"`
	Date                  string            `bson:"date" json:"date"` // YYYY-MM-DD, local to Timezone
	StartTime             TimeOfDay         `bson:"startTime" json:"startTime"`
	EndTime               TimeOfDay         `bson:"endTime" json:"endTime"`
	Timezone              string            `bson:"timezone" json:"timezone"` // IANA zone
	SlotDurationMinutes   int               `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	BreakDurationMinutes  int               `bson:"breakDurationMinutes" json:"breakDurationMinutes"`
	IsRecurring           bool              `bson:"isRecurring" json:"isRecurring"`
	RecurrencePattern     RecurrencePattern `bson:"recurrencePattern,omitempty" json:"recurrencePattern,omitempty"`
	RecurrenceEndDate     string            `bson:"recurrenceEndDate,omitempty" json:"recurrenceEndDate,omitempty"`
	MaxBookingsPerSlot    int               `bson:"maxBookingsPerSlot" json:"maxBookingsPerSlot"`
	Occupancy             int               `bson:"occupancy" json:"occupancy"`
	AppointmentType       AppointmentType   `bson:"appointmentType" json:"appointmentType"`
	Location              Location          `bson:"location" json:"location"`
	Pricing               *Pricing          `bson:"pricing,omitempty" json:"pricing,omitempty"`
	SpecialRequirements   []string          `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
	Notes                 string            `bson:"notes,omitempty" json:"notes,omitempty"`
	RecurringGroupID      string            `bson:"recurringGroupId,omitempty" json:"recurringGroupId,omitempty"`
	Timestamps            `bson:",inline"`
}

// AvailabilityCreateRequest is the §6 POST /availability request body,
// mirroring §4.2 create's input spec.
type AvailabilityCreateRequest struct {
	Date                 string            `json:"date"`
	StartTime            string            `json:"startTime"`
	EndTime              string            `json:"endTime"`
	Timezone             string            `json:"timezone"`
	SlotDurationMinutes  int               `json:"slotDurationMinutes"`
	BreakDurationMinutes int               `json:"breakDurationMinutes"`
	IsRecurring          bool              `json:"isRecurring"`
	RecurrencePattern    RecurrencePattern `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate    string            `json:"recurrenceEndDate,omitempty"`
	MaxBookingsPerSlot   int               `json:"maxBookingsPerSlot"`
	AppointmentType      AppointmentType   `json:"appointmentType"`
	Location             Location          `json:"location"`
	Pricing              *Pricing          `json:"pricing,omitempty"`
	SpecialRequirements  []string          `json:"specialRequirements,omitempty"`
	Notes                string            `json:"notes,omitempty"`
}

// AvailabilityCreateSummary is the §4.2 create result / §6 201 response body.
type AvailabilityCreateSummary struct {
	TemplateIDs            []string `json:"templateIds"`
	SlotsCreated            int      `json:"slotsCreated"`
	DateRangeStart          string   `json:"dateRangeStart"`
	DateRangeEnd            string   `json:"dateRangeEnd"`
	TotalAppointmentsAvailable int  `json:"totalAppointmentsAvailable"`
}

// AvailabilityUpdatePatch is the §4.2 update's permitted patch fields.
type AvailabilityUpdatePatch struct {
	Status  *SlotStatus `json:"status,omitempty"`
	Notes   *string     `json:"notes,omitempty"`
	Pricing *Pricing    `json:"pricing,omitempty"`
}

// AvailabilityDeleteOptions parameterizes §4.2 delete.
type AvailabilityDeleteOptions struct {
	DeleteRecurring bool
	Reason          string
}

// ProviderAvailabilityFilters parameterizes the §6 GET provider availability
// listing: a date range plus optional status/appointment-type narrowing.
type ProviderAvailabilityFilters struct {
	StartDate       string
	EndDate         string
	Status          SlotStatus
	AppointmentType AppointmentType
}

// ProviderAvailabilityDay is one date's worth of slots in the §6 grouped-
// by-date listing response, with summary counters.
type ProviderAvailabilityDay struct {
	Date           string           `json:"date"`
	Slots          []SlotProjection `json:"slots"`
	TotalSlots     int              `json:"totalSlots"`
	AvailableSlots int              `json:"availableSlots"`
	BookedSlots    int              `json:"bookedSlots"`
}
