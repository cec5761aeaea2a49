package registration

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/database/patientrepo"
	"caretime/database/verificationrepo"
	"caretime/models"
)

// VerificationService issues and redeems the §6 single-use email-link and
// phone-OTP verification tokens. The random-digest generator is adapted
// from the teacher's utils/otp.go generateSecureOTP; persistence is
// durable (Mongo, via verificationrepo) rather than the teacher's Redis-only
// OTP cache, since the 24h email TTL needs to survive a cache eviction.
type VerificationService struct {
	tokens   verificationrepo.Repository
	patients patientrepo.Repository
	logger   *zap.Logger
}

func NewVerificationService(tokens verificationrepo.Repository, patients patientrepo.Repository, logger *zap.Logger) *VerificationService {
	return &VerificationService{tokens: tokens, patients: patients, logger: logger}
}

func generateSecureDigest(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	digest := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(digest) > length {
		digest = digest[:length]
	}
	return digest, nil
}

// IssueEmailToken invalidates any outstanding email token for patientID and
// issues a fresh UUID token with the §6 24h lifetime.
func (s *VerificationService) IssueEmailToken(ctx context.Context, patientID string) error {
	if err := s.tokens.InvalidateOutstanding(ctx, patientID, models.ChannelEmail); err != nil {
		return fmt.Errorf("invalidate outstanding email tokens: %w", err)
	}
	now := time.Now().UTC()
	t := &models.VerificationToken{
		PatientID: patientID,
		Channel:   models.ChannelEmail,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(models.EmailVerificationTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return fmt.Errorf("create email verification token: %w", err)
	}
	// Delivery (SMTP/transactional email) is out of scope; only the
	// issuance is logged here (not the token value), the way the teacher's
	// OTP path logs a WhatsApp send it has no live credentials for.
	s.logger.Info("email verification token issued", zap.String("patientId", patientID))
	return nil
}

// IssuePhoneOTP invalidates any outstanding phone OTP for patientID and
// issues a fresh 6-digit OTP with the §6 5-minute lifetime.
func (s *VerificationService) IssuePhoneOTP(ctx context.Context, patientID string) error {
	if err := s.tokens.InvalidateOutstanding(ctx, patientID, models.ChannelPhone); err != nil {
		return fmt.Errorf("invalidate outstanding phone otps: %w", err)
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	v := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	otp := fmt.Sprintf("%06d", v%1000000)
	now := time.Now().UTC()
	t := &models.VerificationToken{
		PatientID: patientID,
		Channel:   models.ChannelPhone,
		Token:     otp,
		ExpiresAt: now.Add(models.PhoneVerificationTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return fmt.Errorf("create phone verification token: %w", err)
	}
	s.logger.Info("phone verification otp issued", zap.String("patientId", patientID))
	return nil
}

// VerifyEmail redeems an email verification token for patientID, marking
// the patient's email_verified flag.
func (s *VerificationService) VerifyEmail(ctx context.Context, patientID, token string) error {
	return s.redeem(ctx, patientID, models.ChannelEmail, token, s.patients.SetEmailVerified)
}

// VerifyPhone redeems a phone OTP for patientID, marking the patient's
// phone_verified flag.
func (s *VerificationService) VerifyPhone(ctx context.Context, patientID, token string) error {
	return s.redeem(ctx, patientID, models.ChannelPhone, token, s.patients.SetPhoneVerified)
}

func (s *VerificationService) redeem(ctx context.Context, patientID string, channel models.VerificationChannel, token string, mark func(context.Context, string, bool) error) error {
	t, err := s.tokens.GetActiveByToken(ctx, patientID, channel, token)
	if err != nil {
		return fmt.Errorf("look up verification token: %w", err)
	}
	if t == nil {
		return apierr.New(apierr.KindBadInput, "verification token is invalid or expired")
	}
	if err := s.tokens.MarkUsed(ctx, t.ID); err != nil {
		return fmt.Errorf("mark verification token used: %w", err)
	}
	if err := mark(ctx, patientID, true); err != nil {
		return fmt.Errorf("update verification flag: %w", err)
	}
	return nil
}
