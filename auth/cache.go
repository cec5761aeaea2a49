package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// sessionCachePrefix namespaces cached session entries in Redis, adapted
// from utils/auth_session.go's AuthSessionPrefix convention.
const sessionCachePrefix = "authSession:"

// cachedSession is the Redis-resident snapshot of a models.Session, written
// at login with a fixed TTL. The refresh path does not read it; it loads
// sessions from sessionrepo.
type cachedSession struct {
	PrincipalID string    `json:"principalId"`
	RefreshHash string    `json:"refreshHash"`
	Revoked     bool      `json:"revoked"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionCache is a write-through Redis cache beside sessionrepo: login
// puts a snapshot and logout/revocation invalidate it. Mongo remains the
// source of truth and no auth path reads from the cache, so a Redis outage
// never affects correctness.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache constructs a SessionCache over client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// Put stores a session snapshot with a TTL matching its remaining
// lifetime, so an already-expired session is never cached past its expiry.
func (c *SessionCache) Put(ctx context.Context, s cachedSessionView) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(cachedSession{
		PrincipalID: s.PrincipalID,
		RefreshHash: s.RefreshHash,
		Revoked:     s.Revoked,
		ExpiresAt:   s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal cached session: %w", err)
	}
	if err := c.client.Set(ctx, sessionCachePrefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache session %s: %w", s.ID, err)
	}
	return nil
}

// Get returns the cached session, or nil on a cache miss (including one
// caused by Redis being unreachable).
func (c *SessionCache) Get(ctx context.Context, sessionID string) *cachedSessionView {
	data, err := c.client.Get(ctx, sessionCachePrefix+sessionID).Result()
	if err != nil {
		return nil
	}
	var cs cachedSession
	if err := json.Unmarshal([]byte(data), &cs); err != nil {
		return nil
	}
	return &cachedSessionView{
		ID:          sessionID,
		PrincipalID: cs.PrincipalID,
		RefreshHash: cs.RefreshHash,
		Revoked:     cs.Revoked,
		ExpiresAt:   cs.ExpiresAt,
	}
}

// Invalidate drops a cached session, used on revoke/rotation so a stale
// entry never outlives the Mongo record it mirrors.
func (c *SessionCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionCachePrefix+sessionID).Err()
}

// cachedSessionView is the plain-value shape callers build from a
// models.Session to avoid importing models into the cache's wire struct
// directly.
type cachedSessionView struct {
	ID          string
	PrincipalID string
	RefreshHash string
	Revoked     bool
	ExpiresAt   time.Time
}
