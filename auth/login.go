package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/models"
)

// LoginParams carries the request context §4.5 login needs beyond the
// wire-level models.LoginRequest.
type LoginParams struct {
	models.LoginRequest
	SourceAddr string
	UserAgent  string
}

// Login implements §4.5 login, steps 1-7.
func (m *RoleManager) Login(ctx context.Context, params LoginParams) (*models.LoginResponse, error) {
	p, err := m.store.findByIdentifier(ctx, params.Identifier)
	if err != nil {
		return nil, fmt.Errorf("look up principal: %w", err)
	}
	if p == nil {
		return nil, apierr.New(apierr.KindInvalidCredentials, "invalid credentials")
	}

	now := time.Now().UTC()
	if p.LockedUntil != nil && p.LockedUntil.After(now) {
		return nil, apierr.New(apierr.KindAccountLocked, "account is temporarily locked").
			WithContext("locked_until", p.LockedUntil)
	}
	if !p.IsActive {
		return nil, apierr.New(apierr.KindAccountDeactivated, "account is deactivated")
	}
	if m.store.role() == models.RolePatient && !p.EmailVerified {
		return nil, apierr.New(apierr.KindEmailNotVerified, "email verification required").
			WithContext("verification_required", true)
	}

	if !credentials.VerifyPassword(p.PasswordHash, params.Password) {
		return nil, m.handleLoginFailure(ctx, p)
	}

	if err := m.store.recordLoginSuccess(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("record login success: %w", err)
	}

	session, accessToken, refreshToken, err := m.establishSession(ctx, p, params.RememberMe, params.DeviceDescriptor, params.SourceAddr, params.UserAgent)
	if err != nil {
		return nil, err
	}

	m.appendEvent(ctx, p.ID, models.EventLoginSuccess, models.SeverityInfo, params.SourceAddr, params.UserAgent, nil)
	m.logger.Info("login succeeded", zap.String("principalId", p.ID), zap.String("role", string(p.Role)))

	return &models.LoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresInSeconds: int(m.store.accessTokenTTL(params.RememberMe).Seconds()),
		TokenType:        "Bearer",
		Principal:        p.Summary,
	}, nil
}

func (m *RoleManager) handleLoginFailure(ctx context.Context, p *principal) error {
	count := p.FailedLoginCount + 1
	var lockUntil *time.Time
	if count >= m.store.lockoutThreshold() {
		until := time.Now().UTC().Add(m.store.lockoutWindow())
		lockUntil = &until
	}
	if err := m.store.recordLoginFailure(ctx, p.ID, lockUntil); err != nil {
		m.logger.Error("record login failure", zap.Error(err))
	}

	kind := models.EventLoginFailed
	severity := models.SeverityWarning
	if lockUntil != nil {
		kind = models.EventAccountLocked
		severity = models.SeverityCritical
	}
	m.appendEvent(ctx, p.ID, kind, severity, "", "", map[string]interface{}{"failedCount": count})

	return apierr.New(apierr.KindInvalidCredentials, "invalid credentials")
}

// establishSession materializes a Session, mints the access/refresh pair,
// and enforces the §4.8 per-patient session cap.
func (m *RoleManager) establishSession(ctx context.Context, p *principal, rememberMe bool, deviceDescriptor, sourceAddr, userAgent string) (*models.Session, string, string, error) {
	if cap := m.store.sessionCap(); cap > 0 {
		active, err := m.sessions.CountActiveForPrincipal(ctx, p.ID)
		if err != nil {
			return nil, "", "", fmt.Errorf("count active sessions: %w", err)
		}
		if int(active) >= cap {
			if err := m.sessions.RevokeOldestForPrincipal(ctx, p.ID); err != nil {
				return nil, "", "", fmt.Errorf("evict oldest session: %w", err)
			}
		}
	}

	sessionID := uuid.New().String()
	refreshTTL := m.store.refreshTokenTTL(rememberMe)
	now := time.Now().UTC()

	fingerprint := credentials.DeviceFingerprint(userAgent, sourceAddr, deviceDescriptor)
	accessToken, err := m.minter.MintAccessToken(credentials.AccessClaims{
		PrincipalID:       p.ID,
		Role:              p.Role,
		Email:             p.Email,
		EmailVerified:     p.EmailVerified,
		PhoneVerified:     p.PhoneVerified,
		SessionID:         sessionID,
		DeviceFingerprint: fingerprint,
	}, m.store.accessTokenTTL(rememberMe))
	if err != nil {
		return nil, "", "", fmt.Errorf("mint access token: %w", err)
	}

	refreshToken, err := m.minter.MintRefreshToken(p.ID, sessionID, fingerprint, refreshTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("mint refresh token: %w", err)
	}

	session := &models.Session{
		ID:          sessionID,
		PrincipalID: p.ID,
		Role:        p.Role,
		RefreshHash: credentials.HashToken(refreshToken),
		DeviceDesc:  deviceDescriptor,
		SourceAddr:  sourceAddr,
		UserAgent:   userAgent,
		ExpiresAt:   now.Add(refreshTTL),
		LastUsedAt:  now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", "", fmt.Errorf("create session: %w", err)
	}
	m.cacheSession(ctx, session)

	return session, accessToken, refreshToken, nil
}

func (m *RoleManager) cacheSession(ctx context.Context, s *models.Session) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Put(ctx, cachedSessionView{
		ID:          s.ID,
		PrincipalID: s.PrincipalID,
		RefreshHash: s.RefreshHash,
		Revoked:     s.Revoked,
		ExpiresAt:   s.ExpiresAt,
	}); err != nil {
		m.logger.Warn("cache session", zap.String("sessionId", s.ID), zap.Error(err))
	}
}

func (m *RoleManager) appendEvent(ctx context.Context, principalID string, kind models.SecurityEventKind, severity models.SecurityEventSeverity, sourceAddr, userAgent string, detail map[string]interface{}) {
	event := &models.SecurityEvent{
		ID:          uuid.New().String(),
		PrincipalID: principalID,
		Kind:        kind,
		Severity:    severity,
		SourceAddr:  sourceAddr,
		UserAgent:   userAgent,
		Detail:      detail,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.events.Append(ctx, event); err != nil {
		m.logger.Error("append security event", zap.String("kind", string(kind)), zap.Error(err))
	}
}
