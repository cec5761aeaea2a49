package securityeventrepo

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
		{Keys: bson.D{{Key: "principalId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("principal_created_idx")},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetName("created_at_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("create security event indexes: %w", err)
	}
	return nil
}
