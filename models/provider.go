package models

import "time"

// Provider is a clinician offering bookable availability.
type Provider struct {
	ID                 string     `bson:"id" json:"id"`
	FirstName          string     `bson:"firstName" json:"firstName"`
	LastName           string     `bson:"lastName" json:"lastName"`
	Email              string     `bson:"email" json:"email"`
	PhoneNumber        string     `bson:"phoneNumber" json:"phoneNumber"`
	PasswordHash       string     `bson:"passwordHash" json:"-"`
	Specialization     string     `bson:"specialization" json:"specialization"`
	LicenseNumber      string     `bson:"licenseNumber" json:"licenseNumber"`
	YearsOfExperience  int        `bson:"yearsOfExperience" json:"yearsOfExperience"`
	ClinicAddress      Address    `bson:"clinicAddress" json:"clinicAddress"`
	IsActive           bool       `bson:"isActive" json:"isActive"`
	FailedLoginCount   int        `bson:"failedLoginCount" json:"-"`
	LockedUntil        *time.Time `bson:"lockedUntil,omitempty" json:"-"`
	LastLoginAt        *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	Timestamps         `bson:",inline"`
}

// ProviderSummary is the redacted projection returned alongside login/search
// responses; never carries the password hash or lockout counters.
type ProviderSummary struct {
	ID                string  `json:"id"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Email             string  `json:"email"`
	Specialization    string  `json:"specialization"`
	YearsOfExperience int     `json:"yearsOfExperience"`
	ClinicAddress     Address `json:"clinicAddress"`
}

// Summary projects a Provider down to its public-facing fields.
func (p Provider) Summary() ProviderSummary {
	return ProviderSummary{
		ID:                p.ID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		Specialization:    p.Specialization,
		YearsOfExperience: p.YearsOfExperience,
		ClinicAddress:     p.ClinicAddress,
	}
}
