// Package verificationrepo persists single-use email/phone verification
// tokens (§6). Grounded on the teacher's utils/otp.go generateSecureOTP
// (base32 random token) but durable in Mongo rather than Redis, since a
// patient may legitimately wait up to the 24h email TTL before clicking
// the link and a cache eviction must not silently invalidate that.
package verificationrepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines persistence for verification tokens.
type Repository interface {
	Create(ctx context.Context, t *models.VerificationToken) error
	GetActiveByToken(ctx context.Context, patientID string, channel models.VerificationChannel, token string) (*models.VerificationToken, error)
	MarkUsed(ctx context.Context, id string) error
	InvalidateOutstanding(ctx context.Context, patientID string, channel models.VerificationChannel) error
	EnsureIndexes(ctx context.Context) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

// New constructs a MongoDB-backed Repository against db's "verificationTokens" collection.
func New(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("verificationTokens")}
}
