// Package securityeventrepo persists the append-only SecurityEvent audit
// log (§3 C5). Grounded on database/repository/records — the teacher's own
// append-only, no-update collection — generalized with the compound
// indexes an audit trail's query patterns (by principal, by age) need.
package securityeventrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines persistence for security events.
type Repository interface {
	Append(ctx context.Context, e *models.SecurityEvent) error
	ListForPrincipal(ctx context.Context, principalID string, limit int) ([]models.SecurityEvent, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

// New constructs a MongoDB-backed Repository against db's "securityEvents" collection.
func New(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("securityEvents")}
}
