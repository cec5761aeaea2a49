package models

import "time"

// Slot is the atomic bookable unit materialized from an AvailabilityTemplate
// (§3, §4.3).
type Slot struct {
	ID                string          `bson:"id" json:"id"`
	TemplateID        string          `bson:"templateId" json:"templateId"`
	ProviderID        string          `bson:"providerId" json:"providerId"`
	StartUTC          time.Time       `bson:"startUtc" json:"startUtc"`
	EndUTC            time.Time       `bson:"endUtc" json:"endUtc"`
	Status            SlotStatus      `bson:"status" json:"status"`
	PatientID         *string         `bson:"patientId,omitempty" json:"patientId,omitempty"`
	AppointmentType   AppointmentType `bson:"appointmentType" json:"appointmentType"`
	BookingReference  string          `bson:"bookingReference" json:"bookingReference"`
	Notes             string          `bson:"notes,omitempty" json:"notes,omitempty"`
	SpecialReqs       []string        `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
	// StatusVersion guards the compare-and-set reserve/cancel transition
	// (§4.3, §5, §9): every mutation of Status bumps this counter, and
	// the conditional update filters on its previous value.
	StatusVersion int `bson:"statusVersion" json:"-"`
	Timestamps    `bson:",inline"`
}

// SlotProjection is the redacted, display-ready view of a Slot returned to
// patients and on search results (§4.3 list_for_patient, §4.4).
type SlotProjection struct {
	SlotID           string          `json:"slotId"`
	TemplateID       string          `json:"availabilityId"`
	ProviderID       string          `json:"providerId"`
	Date             string          `json:"date"`
	StartTime        string          `json:"startTime"`
	EndTime          string          `json:"endTime"`
	Status           SlotStatus      `json:"status"`
	AppointmentType  AppointmentType `json:"appointmentType"`
	BookingReference string          `json:"bookingReference,omitempty"`
}

// BookAppointmentRequest is the §6 POST /appointments/book request body.
type BookAppointmentRequest struct {
	SlotID              string          `json:"slotId"`
	PatientID           string          `json:"patientId"`
	AppointmentType     AppointmentType `json:"appointmentType,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	SpecialRequirements []string        `json:"specialRequirements,omitempty"`
}

// BookAppointmentResponse is the §6 201 response body for a successful booking.
type BookAppointmentResponse struct {
	AppointmentID    string `json:"appointmentId"`
	BookingReference string `json:"bookingReference"`
}

// CancelAppointmentRequest is the §6 PUT /appointments/{id}/cancel request body.
type CancelAppointmentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PatientAppointmentFilters narrows §4.3 list_for_patient.
type PatientAppointmentFilters struct {
	StartDate       string
	EndDate         string
	Status          SlotStatus
	AppointmentType AppointmentType
}

// Page bounds a paginated query (§6 page/limit conventions).
type Page struct {
	Page  int
	Limit int
}

// PagedSlots is the §4.3 list_for_patient result: total count + one page.
type PagedSlots struct {
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Items []SlotProjection `json:"items"`
}
