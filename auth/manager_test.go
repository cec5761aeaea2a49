package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/models"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{sessions: map[string]*models.Session{}} }

func (f *fakeSessions) Create(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}
func (f *fakeSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}
func (f *fakeSessions) GetByRefreshHash(_ context.Context, hash string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.RefreshHash == hash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}
func (f *fakeSessions) ListActiveForPrincipal(_ context.Context, principalID string) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Session
	for _, s := range f.sessions {
		if s.PrincipalID == principalID && !s.Revoked {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (f *fakeSessions) CountActiveForPrincipal(ctx context.Context, principalID string) (int64, error) {
	active, err := f.ListActiveForPrincipal(ctx, principalID)
	return int64(len(active)), err
}
func (f *fakeSessions) Touch(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.LastUsedAt = now
	}
	return nil
}
func (f *fakeSessions) RotateRefreshHash(_ context.Context, id, newHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.RefreshHash = newHash
		s.LastUsedAt = now
	}
	return nil
}
func (f *fakeSessions) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}
func (f *fakeSessions) RevokeAllForPrincipal(_ context.Context, principalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.PrincipalID == principalID {
			s.Revoked = true
		}
	}
	return nil
}
func (f *fakeSessions) RevokeOldestForPrincipal(_ context.Context, principalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *models.Session
	for _, s := range f.sessions {
		if s.PrincipalID == principalID && !s.Revoked {
			if oldest == nil || s.LastUsedAt.Before(oldest.LastUsedAt) {
				oldest = s
			}
		}
	}
	if oldest != nil {
		oldest.Revoked = true
	}
	return nil
}
func (f *fakeSessions) DeleteExpiredBefore(context.Context, time.Time) (int64, error) { return 0, nil }
func (f *fakeSessions) EnsureIndexes(context.Context) error                           { return nil }

type fakeEvents struct {
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (f *fakeEvents) Append(_ context.Context, e *models.SecurityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}
func (f *fakeEvents) ListForPrincipal(context.Context, string, int) ([]models.SecurityEvent, error) {
	return f.events, nil
}
func (f *fakeEvents) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }
func (f *fakeEvents) EnsureIndexes(context.Context) error                      { return nil }

type fakePatientStoreBackend struct {
	patients map[string]*models.Patient
}

func (f *fakePatientStoreBackend) Create(context.Context, *models.Patient) error { return nil }
func (f *fakePatientStoreBackend) GetByID(_ context.Context, id string) (*models.Patient, error) {
	return f.patients[id], nil
}
func (f *fakePatientStoreBackend) GetByIdentifier(_ context.Context, identifier string) (*models.Patient, error) {
	for _, p := range f.patients {
		if p.Email == identifier || p.PhoneNumber == identifier {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakePatientStoreBackend) GetByEmail(context.Context, string) (*models.Patient, error) {
	return nil, nil
}
func (f *fakePatientStoreBackend) EmailTaken(context.Context, string) (bool, error) { return false, nil }
func (f *fakePatientStoreBackend) Update(context.Context, *models.Patient) error    { return nil }
func (f *fakePatientStoreBackend) SetEmailVerified(context.Context, string, bool) error {
	return nil
}
func (f *fakePatientStoreBackend) SetPhoneVerified(context.Context, string, bool) error {
	return nil
}
func (f *fakePatientStoreBackend) RecordLoginSuccess(_ context.Context, id string) error {
	f.patients[id].FailedLoginCount = 0
	f.patients[id].LockedUntil = nil
	return nil
}
func (f *fakePatientStoreBackend) RecordLoginFailure(_ context.Context, id string, lockUntil *time.Time) error {
	f.patients[id].FailedLoginCount++
	f.patients[id].LockedUntil = lockUntil
	return nil
}
func (f *fakePatientStoreBackend) ClearLockout(_ context.Context, id string) error {
	f.patients[id].FailedLoginCount = 0
	f.patients[id].LockedUntil = nil
	return nil
}
func (f *fakePatientStoreBackend) EnsureIndexes(context.Context) error { return nil }

func newTestRoleManager(patients map[string]*models.Patient) (*RoleManager, *fakeSessions) {
	sessions := newFakeSessions()
	events := &fakeEvents{}
	minter := credentials.NewTokenMinter("access-secret", "refresh-secret")
	mgr := New(sessions, events, nil, minter, zap.NewNop())
	rm := mgr.ForPatient(&fakePatientStoreBackend{patients: patients})
	return rm, sessions
}

func newPatient(id, email, password string) *models.Patient {
	hash, _ := credentials.HashPassword(password)
	return &models.Patient{ID: id, Email: email, PasswordHash: hash, IsActive: true, EmailVerified: true}
}

func TestLogin_Success(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, sessions := newTestRoleManager(patients)

	resp, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Len(t, sessions.sessions, 1)
}

func TestLogin_WrongPasswordIncrementsFailureCount(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, _ := newTestRoleManager(patients)

	_, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "wrong"},
	})
	require.Error(t, err)
	assert.Equal(t, apierr.KindInvalidCredentials, apierr.KindOf(err))
	assert.Equal(t, 1, patients["pat-1"].FailedLoginCount)
}

func TestLogin_LocksAfterThreeFailures(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, _ := newTestRoleManager(patients)

	for i := 0; i < 3; i++ {
		_, _ = rm.Login(context.Background(), LoginParams{
			LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "wrong"},
		})
	}
	require.NotNil(t, patients["pat-1"].LockedUntil)

	_, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse"},
	})
	require.Error(t, err)
	assert.Equal(t, apierr.KindAccountLocked, apierr.KindOf(err))
}

func TestLogin_UnverifiedEmailRejected(t *testing.T) {
	p := newPatient("pat-1", "a@example.com", "correct-horse")
	p.EmailVerified = false
	rm, _ := newTestRoleManager(map[string]*models.Patient{"pat-1": p})

	_, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse"},
	})
	require.Error(t, err)
	assert.Equal(t, apierr.KindEmailNotVerified, apierr.KindOf(err))
}

func TestRefresh_RotatesTokenAndRejectsOldOne(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, _ := newTestRoleManager(patients)

	login, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse"},
	})
	require.NoError(t, err)

	refreshed, err := rm.Refresh(context.Background(), login.RefreshToken, "")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = rm.Refresh(context.Background(), login.RefreshToken, "")
	require.Error(t, err)
	assert.Equal(t, apierr.KindUnauthorized, apierr.KindOf(err))
}

func TestSessionCap_EvictsOldestBeyondThree(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, sessions := newTestRoleManager(patients)

	for i := 0; i < 4; i++ {
		_, err := rm.Login(context.Background(), LoginParams{
			LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse", DeviceDescriptor: "device"},
		})
		require.NoError(t, err)
	}

	active, err := sessions.CountActiveForPrincipal(context.Background(), "pat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)
}

func TestLogout_RevokesSession(t *testing.T) {
	patients := map[string]*models.Patient{"pat-1": newPatient("pat-1", "a@example.com", "correct-horse")}
	rm, sessions := newTestRoleManager(patients)

	login, err := rm.Login(context.Background(), LoginParams{
		LoginRequest: models.LoginRequest{Identifier: "a@example.com", Password: "correct-horse"},
	})
	require.NoError(t, err)

	require.NoError(t, rm.Logout(context.Background(), login.RefreshToken))
	active, _ := sessions.CountActiveForPrincipal(context.Background(), "pat-1")
	assert.Equal(t, int64(0), active)

	// idempotent: logging out again with the same (now-revoked) token is not an error
	require.NoError(t, rm.Logout(context.Background(), login.RefreshToken))
}
