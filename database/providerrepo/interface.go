// Package providerrepo persists Provider documents. Adapted from the
// teacher's database/repository/user package, split the way
// database/repository/timeslot splits interface/crud/queries/indexes.
package providerrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines the persistence operations for providers.
type Repository interface {
	Create(ctx context.Context, p *models.Provider) error
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// ListByIDs bulk-loads active providers for the search service's
	// template-to-provider join (§4.4 step 2).
	ListByIDs(ctx context.Context, ids []string) ([]models.Provider, error)
	GetByEmail(ctx context.Context, email string) (*models.Provider, error)
	// GetByIdentifier resolves a login identifier that may be either an
	// email (case-folded) or a phone number, per §4.5 step 1.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Provider, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, p *models.Provider) error
	RecordLoginSuccess(ctx context.Context, id string) error
	RecordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error
	ClearLockout(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

// New constructs a MongoDB-backed Repository against db's "providers" collection.
func New(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("providers")}
}
