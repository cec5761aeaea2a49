// Package sessionrepo is the durable store of record for Session documents
// (§3 C4). A fixed-TTL Redis snapshot cache of sessions lives in the auth
// package (§3 DOMAIN STACK), grounded on the teacher's utils/cache.go
// AuthCacheClient split; session reads go to this package, the Mongo
// source of truth, grounded on database/repository/user.
package sessionrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines persistence for authenticated sessions.
type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByRefreshHash(ctx context.Context, hash string) (*models.Session, error)
	ListActiveForPrincipal(ctx context.Context, principalID string) ([]models.Session, error)
	CountActiveForPrincipal(ctx context.Context, principalID string) (int64, error)
	Touch(ctx context.Context, id string, now time.Time) error
	// RotateRefreshHash implements the §4.5 refresh step 4 rotation: the
	// session's stored refresh hash and last-used timestamp move together
	// so a crash between them can never leave one updated without the other.
	RotateRefreshHash(ctx context.Context, id, newHash string, now time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForPrincipal(ctx context.Context, principalID string) error
	// RevokeOldestForPrincipal implements the §4.8 session-cap LRU
	// eviction: when a principal already holds the maximum number of
	// live sessions, the least-recently-used one is revoked to make room.
	RevokeOldestForPrincipal(ctx context.Context, principalID string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

// New constructs a MongoDB-backed Repository against db's "sessions" collection.
func New(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("sessions")}
}
