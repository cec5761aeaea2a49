package models

import "time"

// Patient is a person who books appointments against provider availability.
type Patient struct {
	ID                string            `bson:"id" json:"id"`
	FirstName         string            `bson:"firstName" json:"firstName"`
	LastName          string            `bson:"lastName" json:"lastName"`
	Email             string            `bson:"email" json:"email"`
	PhoneNumber       string            `bson:"phoneNumber" json:"phoneNumber"`
	PasswordHash      string            `bson:"passwordHash" json:"-"`
	DateOfBirth       string            `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender            Gender            `bson:"gender" json:"gender"`
	Address           Address           `bson:"address" json:"address"`
	EmergencyContact  *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	InsuranceInfo     *InsuranceInfo    `bson:"insuranceInfo,omitempty" json:"insuranceInfo,omitempty"`
	MedicalHistory    []string          `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	EmailVerified     bool              `bson:"emailVerified" json:"emailVerified"`
	PhoneVerified     bool              `bson:"phoneVerified" json:"phoneVerified"`
	ConsentMarketing  bool              `bson:"consentMarketing" json:"consentMarketing"`
	ConsentDataRetain bool              `bson:"consentDataRetain" json:"consentDataRetain"`
	ConsentHIPAA      bool              `bson:"consentHipaa" json:"consentHipaa"`
	IsActive          bool              `bson:"isActive" json:"isActive"`
	FailedLoginCount  int               `bson:"failedLoginCount" json:"-"`
	LockedUntil       *time.Time        `bson:"lockedUntil,omitempty" json:"-"`
	LastLoginAt       *time.Time        `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	Timestamps        `bson:",inline"`
}

// PatientSummary is the redacted projection returned on login/session responses.
type PatientSummary struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	PhoneVerified bool   `json:"phoneVerified"`
}

// Summary projects a Patient down to its public-facing fields.
func (p Patient) Summary() PatientSummary {
	return PatientSummary{
		ID:            p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		PhoneVerified: p.PhoneVerified,
	}
}
