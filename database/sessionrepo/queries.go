package sessionrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"caretime/models"
)

func (r *mongoRepo) ListActiveForPrincipal(ctx context.Context, principalID string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"principalId": principalID, "revoked": false, "expiresAt": bson.M{"$gt": time.Now().UTC()}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "lastUsedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list active sessions for %s: %w", principalID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Session
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) CountActiveForPrincipal(ctx context.Context, principalID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"principalId": principalID, "revoked": false, "expiresAt": bson.M{"$gt": time.Now().UTC()}}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count active sessions for %s: %w", principalID, err)
	}
	return n, nil
}

// RevokeOldestForPrincipal revokes the least-recently-used active session
// (§4.8's session-cap eviction).
func (r *mongoRepo) RevokeOldestForPrincipal(ctx context.Context, principalID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"principalId": principalID, "revoked": false}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "lastUsedAt", Value: 1}})
	update := bson.M{"$set": bson.M{"revoked": true, "updatedAt": time.Now().UTC()}}

	var s models.Session
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&s)
	if err != nil {
		return fmt.Errorf("revoke oldest session for %s: %w", principalID, err)
	}
	return nil
}
