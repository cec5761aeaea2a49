package sessionrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the lookup indexes the refresh and list_sessions
// paths depend on, plus a TTL index so Mongo itself reaps long-expired
// documents between retention sweeps (§4.8, §4.9's cron job is the primary
// mechanism; this is a backstop).
func (r *mongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "refreshHash", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_refresh_hash")},
		{Keys: bson.D{{Key: "principalId", Value: 1}, {Key: "revoked", Value: 1}}, Options: options.Index().SetName("principal_revoked_idx")},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}
