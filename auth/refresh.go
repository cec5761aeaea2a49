package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/models"
)

// Refresh implements §4.5 refresh: verify -> load session -> rotate.
func (m *RoleManager) Refresh(ctx context.Context, refreshToken, sourceAddr string) (*models.LoginResponse, error) {
	claims, err := m.minter.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apierr.New(apierr.KindUnauthorized, "invalid refresh token")
	}

	session, err := m.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	now := time.Now().UTC()
	hash := credentials.HashToken(refreshToken)
	if session == nil || session.Revoked || !session.ExpiresAt.After(now) || session.RefreshHash != hash {
		return nil, apierr.New(apierr.KindUnauthorized, "invalid refresh token")
	}

	p, err := m.store.findByID(ctx, session.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, apierr.New(apierr.KindNotFound, "principal not found")
	}

	fingerprint := credentials.DeviceFingerprint(session.UserAgent, sourceAddr, session.DeviceDesc)
	newAccess, err := m.minter.MintAccessToken(credentials.AccessClaims{
		PrincipalID:       p.ID,
		Role:              p.Role,
		Email:             p.Email,
		EmailVerified:     p.EmailVerified,
		PhoneVerified:     p.PhoneVerified,
		SessionID:         session.ID,
		DeviceFingerprint: fingerprint,
	}, m.store.accessTokenTTL(false))
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	remaining := time.Until(session.ExpiresAt)
	newRefresh, err := m.minter.MintRefreshToken(p.ID, session.ID, fingerprint, remaining)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	newHash := credentials.HashToken(newRefresh)
	if err := m.sessions.RotateRefreshHash(ctx, session.ID, newHash, now); err != nil {
		return nil, fmt.Errorf("rotate refresh hash: %w", err)
	}
	session.RefreshHash = newHash
	session.LastUsedAt = now
	m.cacheSession(ctx, session)

	m.appendEvent(ctx, p.ID, models.EventRefreshUsed, models.SeverityInfo, sourceAddr, session.UserAgent, nil)

	return &models.LoginResponse{
		AccessToken:      newAccess,
		RefreshToken:     newRefresh,
		ExpiresInSeconds: int(m.store.accessTokenTTL(false).Seconds()),
		TokenType:        "Bearer",
		Principal:        p.Summary,
	}, nil
}

