// Package registration implements §6's provider/patient registration and
// patient email/phone verification flows. Grounded on the teacher's
// services/provider/signup.go and services/user/signup.go: validate,
// hash password, assign an id, persist, with the teacher's password
// complexity check carried over verbatim (§4.7 demands password hashing but
// is silent on complexity, so the teacher's rule fills that gap).
package registration

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/database/providerrepo"
	"caretime/models"
)

var (
	phonePattern   = regexp.MustCompile(`^\+\d{1,15}$`)
	zipPattern     = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	licensePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// VerifyPasswordComplexity enforces the teacher's password policy: at least
// 8 characters with upper, lower, digit and symbol classes represented.
func VerifyPasswordComplexity(pw string) error {
	var (
		hasMinLen = len(pw) >= 8
		hasUpper  = regexp.MustCompile(`[A-Z]`).MatchString(pw)
		hasLower  = regexp.MustCompile(`[a-z]`).MatchString(pw)
		hasDigit  = regexp.MustCompile(`[0-9]`).MatchString(pw)
		hasSymbol = regexp.MustCompile(`[\W_]`).MatchString(pw)
	)
	switch {
	case !hasMinLen:
		return fmt.Errorf("password must be at least 8 characters long")
	case !hasUpper:
		return fmt.Errorf("password must include at least one uppercase letter")
	case !hasLower:
		return fmt.Errorf("password must include at least one lowercase letter")
	case !hasDigit:
		return fmt.Errorf("password must include at least one number")
	case !hasSymbol:
		return fmt.Errorf("password must include at least one symbol")
	}
	return nil
}

// ProviderService registers clinicians per §6 POST /v1/provider/register.
type ProviderService struct {
	repo   providerrepo.Repository
	logger *zap.Logger
}

func NewProviderService(repo providerrepo.Repository, logger *zap.Logger) *ProviderService {
	return &ProviderService{repo: repo, logger: logger}
}

// Register validates the request, hashes the password, and persists a new
// Provider. Returns apierr.KindBadInput on validation failure and
// apierr.KindConflict if the email is already taken.
func (s *ProviderService) Register(ctx context.Context, req models.ProviderRegistrationRequest) (*models.Provider, error) {
	fields := map[string][]string{}
	if req.FirstName == "" {
		fields["firstName"] = append(fields["firstName"], "required")
	}
	if req.LastName == "" {
		fields["lastName"] = append(fields["lastName"], "required")
	}
	if req.Email == "" {
		fields["email"] = append(fields["email"], "required")
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		fields["phoneNumber"] = append(fields["phoneNumber"], "must be E.164, e.g. +15551234567")
	}
	if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = append(fields["confirmPassword"], "must match password")
	} else if err := VerifyPasswordComplexity(req.Password); err != nil {
		fields["password"] = append(fields["password"], err.Error())
	}
	if !licensePattern.MatchString(req.LicenseNumber) {
		fields["licenseNumber"] = append(fields["licenseNumber"], "must be alphanumeric uppercase")
	}
	if req.YearsOfExperience < 0 || req.YearsOfExperience > 50 {
		fields["yearsOfExperience"] = append(fields["yearsOfExperience"], "must be between 0 and 50")
	}
	if !zipPattern.MatchString(req.ClinicAddress.Zip) {
		fields["clinicAddress.zip"] = append(fields["clinicAddress.zip"], "must be 5 or 5-4 digits")
	}
	if len(fields) > 0 {
		return nil, apierr.BadInput(fields)
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if taken {
		return nil, apierr.Conflict("a provider with this email already exists")
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	provider := &models.Provider{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		PasswordHash:      hash,
		Specialization:    req.Specialization,
		LicenseNumber:     req.LicenseNumber,
		YearsOfExperience: req.YearsOfExperience,
		ClinicAddress:     req.ClinicAddress,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, provider); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	s.logger.Info("provider registered", zap.String("providerId", provider.ID), zap.String("email", provider.Email))
	return provider, nil
}
