package registration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/database/patientrepo"
	"caretime/models"
)

// PatientService registers patients per §6 POST /v1/patient/register and
// issues the initial verification tokens §6 requires before login.
type PatientService struct {
	repo   patientrepo.Repository
	verify *VerificationService
	logger *zap.Logger
}

func NewPatientService(repo patientrepo.Repository, verify *VerificationService, logger *zap.Logger) *PatientService {
	return &PatientService{repo: repo, verify: verify, logger: logger}
}

// Register validates the request, hashes the password, persists a new
// unverified Patient, and issues an email verification token (§6:
// registration followed by a verify/email step before login succeeds).
func (s *PatientService) Register(ctx context.Context, req models.PatientRegistrationRequest) (*models.Patient, error) {
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
	if req.DateOfBirth == "" {
		fields["dateOfBirth"] = append(fields["dateOfBirth"], "required")
	}
	if !req.ConsentHIPAA {
		fields["consentHipaa"] = append(fields["consentHipaa"], "HIPAA consent is required")
	}
	if len(fields) > 0 {
		return nil, apierr.BadInput(fields)
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if taken {
		return nil, apierr.Conflict("a patient with this email already exists")
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	patient := &models.Patient{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		PasswordHash:      hash,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		Address:           req.Address,
		EmergencyContact:  req.EmergencyContact,
		MedicalHistory:    req.MedicalHistory,
		InsuranceInfo:     req.InsuranceInfo,
		ConsentMarketing:  req.ConsentMarketing,
		ConsentDataRetain: req.ConsentDataRetain,
		ConsentHIPAA:      req.ConsentHIPAA,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	if err := s.verify.IssueEmailToken(ctx, patient.ID); err != nil {
		s.logger.Error("issue email verification token", zap.String("patientId", patient.ID), zap.Error(err))
	}

	s.logger.Info("patient registered", zap.String("patientId", patient.ID), zap.String("email", patient.Email))
	return patient, nil
}
