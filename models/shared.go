// Package models holds the entities and request/response shapes shared
// across the scheduling core and its HTTP surface.
package models

import "time"

// Address is a clinic or residential mailing address.
type Address struct {
	Street string `bson:"street" json:"street"`
	City   string `bson:"city" json:"city"`
	State  string `bson:"state" json:"state"`
	Zip    string `bson:"zip" json:"zip"`
}

// EmergencyContact is an optional patient contact for urgent situations.
type EmergencyContact struct {
	Name         string `bson:"name" json:"name"`
	Relationship string `bson:"relationship" json:"relationship"`
	PhoneNumber  string `bson:"phoneNumber" json:"phoneNumber"`
}

// InsuranceInfo is the optional patient insurance reference.
type InsuranceInfo struct {
	Provider     string `bson:"provider" json:"provider"`
	PolicyNumber string `bson:"policyNumber" json:"policyNumber"`
}

// Gender is a closed set of patient gender values.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderOther     Gender = "other"
	GenderUndefined Gender = "prefer_not_to_say"
)

// AppointmentType is the closed set of appointment kinds a slot may carry.
type AppointmentType string

const (
	AppointmentConsultation AppointmentType = "consultation"
	AppointmentFollowUp     AppointmentType = "follow-up"
	AppointmentEmergency    AppointmentType = "emergency"
	AppointmentTelemedicine AppointmentType = "telemedicine"
)

// RecurrencePattern is the closed set of recurrence expansions for an
// availability template.
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// LocationType distinguishes an in-person clinic visit from a remote one.
type LocationType string

const (
	LocationClinic     LocationType = "clinic"
	LocationTelehealth LocationType = "telehealth"
	LocationHome       LocationType = "home_visit"
)

// Location is the place an appointment takes place.
type Location struct {
	Type    LocationType `bson:"type" json:"type"`
	Address Address      `bson:"address" json:"address"`
	Room    string       `bson:"room,omitempty" json:"room,omitempty"`
}

// Pricing is the optional descriptive pricing attached to a template/slot.
type Pricing struct {
	BaseFee           float64 `bson:"baseFee" json:"baseFee"`
	InsuranceAccepted bool    `bson:"insuranceAccepted" json:"insuranceAccepted"`
	Currency          string  `bson:"currency" json:"currency"`
}

// SlotStatus is the closed set of states in the booking state machine (§4.3).
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotCancelled   SlotStatus = "cancelled"
	SlotBlocked     SlotStatus = "blocked"
	SlotMaintenance SlotStatus = "maintenance"
)

// PrincipalRole distinguishes the two caller kinds sharing the auth surface.
type PrincipalRole string

const (
	RoleProvider PrincipalRole = "provider"
	RolePatient  PrincipalRole = "patient"
)

// TimeOfDay is a local HH:MM wall-clock value, kept as a string on the wire
// and parsed by timeutil for arithmetic.
type TimeOfDay string

// Timestamps embeds the CreatedAt/UpdatedAt pair most entities carry.
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
