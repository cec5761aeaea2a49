package verificationrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "channel", Value: 1}, {Key: "token", Value: 1}}, Options: options.Index().SetName("patient_channel_token_idx")},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("create verification token indexes: %w", err)
	}
	return nil
}
