package auth

import (
	"context"
	"fmt"
	"sort"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/models"
)

// Logout implements §4.5 logout: verify, revoke, idempotent.
func (m *RoleManager) Logout(ctx context.Context, refreshToken string) error {
	claims, err := m.minter.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil // an already-invalid/expired token is logged out by definition
	}
	session, err := m.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.Revoked {
		return nil
	}
	if err := m.sessions.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if m.cache != nil {
		_ = m.cache.Invalidate(ctx, session.ID)
	}
	m.appendEvent(ctx, session.PrincipalID, models.EventLogout, models.SeverityInfo, session.SourceAddr, session.UserAgent, nil)
	return nil
}

// LogoutAll implements §4.5 logout_all: re-verify password, revoke every
// non-revoked session.
func (m *RoleManager) LogoutAll(ctx context.Context, principalID, password string) error {
	p, err := m.store.findByID(ctx, principalID)
	if err != nil {
		return fmt.Errorf("load principal: %w", err)
	}
	if p == nil {
		return apierr.New(apierr.KindNotFound, "principal not found")
	}
	if !credentials.VerifyPassword(p.PasswordHash, password) {
		return apierr.New(apierr.KindInvalidCredentials, "invalid credentials")
	}

	sessions, err := m.sessions.ListActiveForPrincipal(ctx, principalID)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}
	if err := m.sessions.RevokeAllForPrincipal(ctx, principalID); err != nil {
		return fmt.Errorf("revoke all sessions: %w", err)
	}
	if m.cache != nil {
		for _, s := range sessions {
			_ = m.cache.Invalidate(ctx, s.ID)
		}
	}
	m.appendEvent(ctx, principalID, models.EventLogoutAll, models.SeverityInfo, "", "", nil)
	return nil
}

// ListSessions implements §4.5 list_sessions: live sessions ordered by
// last_used desc, with currentSessionID flagged.
func (m *RoleManager) ListSessions(ctx context.Context, principalID, currentSessionID string) ([]models.SessionSummary, error) {
	sessions, err := m.sessions.ListActiveForPrincipal(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].LastUsedAt.After(sessions[j].LastUsedAt) })

	out := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, models.SessionSummary{
			ID:         s.ID,
			DeviceDesc: s.DeviceDesc,
			UserAgent:  s.UserAgent,
			Location:   s.Location,
			LastUsedAt: s.LastUsedAt,
			ExpiresAt:  s.ExpiresAt,
			IsCurrent:  s.ID == currentSessionID,
		})
	}
	return out, nil
}

// RevokeSession implements §4.5 revoke_session: owner-scoped revoke.
func (m *RoleManager) RevokeSession(ctx context.Context, sessionID, principalID string) error {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.PrincipalID != principalID {
		return apierr.NotFound("session not found")
	}
	if err := m.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if m.cache != nil {
		_ = m.cache.Invalidate(ctx, sessionID)
	}
	m.appendEvent(ctx, principalID, models.EventSessionRevoked, models.SeverityInfo, "", "", map[string]interface{}{"sessionId": sessionID})
	return nil
}
