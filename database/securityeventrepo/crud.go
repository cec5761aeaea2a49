package securityeventrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"caretime/models"
)

// Append inserts a new event. Security events are never updated or deleted
// individually — only the retention sweep (DeleteOlderThan) removes them.
func (r *mongoRepo) Append(ctx context.Context, e *models.SecurityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("append security event: %w", err)
	}
	return nil
}

func (r *mongoRepo) ListForPrincipal(ctx context.Context, principalID string, limit int) ([]models.SecurityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"principalId": principalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list security events for %s: %w", principalID, err)
	}
	defer cursor.Close(ctx)

	var out []models.SecurityEvent
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode security events: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete security events older than %s: %w", cutoff, err)
	}
	return res.DeletedCount, nil
}
