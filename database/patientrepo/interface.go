// Package patientrepo persists Patient documents, mirroring providerrepo's
// split but adding the email/phone verification-flag writers patients need
// (§4.6 / §4.8) that providers don't.
package patientrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines the persistence operations for patients.
type Repository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	GetByEmail(ctx context.Context, email string) (*models.Patient, error)
	// GetByIdentifier resolves a login identifier that may be either an
	// email (case-folded) or a phone number, per §4.5 step 1.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Patient, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, p *models.Patient) error
	SetEmailVerified(ctx context.Context, id string, verified bool) error
	SetPhoneVerified(ctx context.Context, id string, verified bool) error
	RecordLoginSuccess(ctx context.Context, id string) error
	RecordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error
	ClearLockout(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

// New constructs a MongoDB-backed Repository against db's "patients" collection.
func New(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("patients")}
}
