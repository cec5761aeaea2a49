package models

import "time"

// VerificationChannel distinguishes an email link token from a phone OTP.
type VerificationChannel string

const (
	ChannelEmail VerificationChannel = "email"
	ChannelPhone VerificationChannel = "phone"
)

// VerificationToken is a single-use email/phone verification credential
// (§6 /patient/verify/email, /patient/verify/phone).
type VerificationToken struct {
	ID        string              `bson:"id" json:"id"`
	PatientID string              `bson:"patientId" json:"patientId"`
	Channel   VerificationChannel `bson:"channel" json:"channel"`
	Token     string              `bson:"token" json:"-"`
	ExpiresAt time.Time           `bson:"expiresAt" json:"expiresAt"`
	Used      bool                `bson:"used" json:"used"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// EmailVerificationTTL is the §6 lifetime for an email verification token.
const EmailVerificationTTL = 24 * time.Hour

// PhoneVerificationTTL is the §6 lifetime for a phone OTP.
const PhoneVerificationTTL = 5 * time.Minute

// VerifyRequest is the §6 verify/email and verify/phone request body.
type VerifyRequest struct {
	Token string `json:"token"`
}
