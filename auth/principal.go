// Package auth implements the Auth Manager (§4.5 C9), a single
// principal-polymorphic login/refresh/logout/session-management core
// shared by providers and patients (§4.5: "Same contract for both provider
// and patient variants"). Grounded on the teacher's services/provider and
// services/user signin flows, generalized behind the principalStore
// interface below so the concurrency- and token-handling logic is written
// once instead of twice.
package auth

import (
	"context"
	"time"

	"caretime/database/patientrepo"
	"caretime/database/providerrepo"
	"caretime/models"
)

// principal is the auth manager's uniform view of a provider or a patient,
// carrying only the fields the login/lockout/session logic needs.
type principal struct {
	ID               string
	Role             models.PrincipalRole
	Email            string
	PasswordHash     string
	IsActive         bool
	EmailVerified    bool
	PhoneVerified    bool
	FailedLoginCount int
	LockedUntil      *time.Time
	Summary          interface{}
}

// principalStore abstracts the principal-specific persistence so Manager
// can implement login/refresh/logout once for both roles.
type principalStore interface {
	role() models.PrincipalRole
	findByIdentifier(ctx context.Context, identifier string) (*principal, error)
	findByID(ctx context.Context, id string) (*principal, error)
	recordLoginSuccess(ctx context.Context, id string) error
	recordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error
	lockoutThreshold() int
	lockoutWindow() time.Duration
	accessTokenTTL(rememberMe bool) time.Duration
	refreshTokenTTL(rememberMe bool) time.Duration
	sessionCap() int
}

// providerStore adapts providerrepo.Repository to principalStore. §4.5's
// lockout policy for providers: after 5 failed logins the account is locked
// for 30 minutes.
type providerStore struct {
	repo providerrepo.Repository
}

func (s *providerStore) role() models.PrincipalRole { return models.RoleProvider }

func (s *providerStore) findByIdentifier(ctx context.Context, identifier string) (*principal, error) {
	p, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil || p == nil {
		return nil, err
	}
	return providerPrincipal(p), nil
}

func (s *providerStore) findByID(ctx context.Context, id string) (*principal, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return providerPrincipal(p), nil
}

func (s *providerStore) recordLoginSuccess(ctx context.Context, id string) error {
	return s.repo.RecordLoginSuccess(ctx, id)
}

func (s *providerStore) recordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error {
	return s.repo.RecordLoginFailure(ctx, id, lockUntil)
}

func (s *providerStore) lockoutThreshold() int           { return 5 }
func (s *providerStore) lockoutWindow() time.Duration    { return 30 * time.Minute }
func (s *providerStore) sessionCap() int                 { return 0 } // providers are not capped (§4.8 caps patients only)

func (s *providerStore) accessTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return 2 * time.Hour
	}
	return time.Hour
}

func (s *providerStore) refreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return 24 * time.Hour
	}
	return time.Hour
}

func providerPrincipal(p *models.Provider) *principal {
	return &principal{
		ID:               p.ID,
		Role:             models.RoleProvider,
		Email:            p.Email,
		PasswordHash:     p.PasswordHash,
		IsActive:         p.IsActive,
		EmailVerified:    true, // §4.5 step 4's verification gate is patient-only
		FailedLoginCount: p.FailedLoginCount,
		LockedUntil:      p.LockedUntil,
		Summary:          p.Summary(),
	}
}

// patientStore adapts patientrepo.Repository to principalStore. §4.5's
// lockout policy for patients: after 3 failed logins the account is locked
// for 1 hour.
type patientStore struct {
	repo patientrepo.Repository
}

func (s *patientStore) role() models.PrincipalRole { return models.RolePatient }

func (s *patientStore) findByIdentifier(ctx context.Context, identifier string) (*principal, error) {
	p, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil || p == nil {
		return nil, err
	}
	return patientPrincipal(p), nil
}

func (s *patientStore) findByID(ctx context.Context, id string) (*principal, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return patientPrincipal(p), nil
}

func (s *patientStore) recordLoginSuccess(ctx context.Context, id string) error {
	return s.repo.RecordLoginSuccess(ctx, id)
}

func (s *patientStore) recordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error {
	return s.repo.RecordLoginFailure(ctx, id, lockUntil)
}

func (s *patientStore) lockoutThreshold() int        { return 3 }
func (s *patientStore) lockoutWindow() time.Duration { return time.Hour }
func (s *patientStore) sessionCap() int              { return 3 } // §4.8: 3 live sessions per patient

func (s *patientStore) accessTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return time.Hour
	}
	return 30 * time.Minute
}

func (s *patientStore) refreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return 30 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

func patientPrincipal(p *models.Patient) *principal {
	return &principal{
		ID:               p.ID,
		Role:             models.RolePatient,
		Email:            p.Email,
		PasswordHash:     p.PasswordHash,
		IsActive:         p.IsActive,
		EmailVerified:    p.EmailVerified,
		PhoneVerified:    p.PhoneVerified,
		FailedLoginCount: p.FailedLoginCount,
		LockedUntil:      p.LockedUntil,
		Summary:          p.Summary(),
	}
}
