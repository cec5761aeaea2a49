package auth

import (
	"go.uber.org/zap"

	"caretime/credentials"
	"caretime/database/patientrepo"
	"caretime/database/providerrepo"
	"caretime/database/securityeventrepo"
	"caretime/database/sessionrepo"
)

// Manager implements §4.5's login/refresh/logout/logout_all/list_sessions/
// revoke_session contract, shared by both provider and patient callers via
// the principalStore each is constructed against.
type Manager struct {
	sessions sessionrepo.Repository
	events   securityeventrepo.Repository
	cache    *SessionCache
	minter   *credentials.TokenMinter
	logger   *zap.Logger
}

// New constructs a Manager.
func New(sessions sessionrepo.Repository, events securityeventrepo.Repository, cache *SessionCache, minter *credentials.TokenMinter, logger *zap.Logger) *Manager {
	return &Manager{sessions: sessions, events: events, cache: cache, minter: minter, logger: logger}
}

// ForProvider binds the manager to the provider principal store for the
// duration of one call. The manager itself holds no per-role state, so this
// is just a lightweight adapter construction.
func (m *Manager) ForProvider(repo providerrepo.Repository) *RoleManager {
	return &RoleManager{Manager: m, store: &providerStore{repo: repo}}
}

// ForPatient binds the manager to the patient principal store.
func (m *Manager) ForPatient(repo patientrepo.Repository) *RoleManager {
	return &RoleManager{Manager: m, store: &patientStore{repo: repo}}
}

// RoleManager is a Manager scoped to one principal role. Handlers call
// through this, not through Manager directly, so role-specific lockout/TTL
// policy (principal.go) is always applied.
type RoleManager struct {
	*Manager
	store principalStore
}
