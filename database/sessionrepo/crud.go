package sessionrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

func (r *mongoRepo) Create(ctx context.Context, s *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt, s.LastUsedAt = now, now, now

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Session
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return &s, nil
}

func (r *mongoRepo) GetByRefreshHash(ctx context.Context, hash string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Session
	if err := r.coll.FindOne(ctx, bson.M{"refreshHash": hash}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by refresh hash: %w", err)
	}
	return &s, nil
}

func (r *mongoRepo) Touch(ctx context.Context, id string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"lastUsedAt": now, "updatedAt": now}})
	if err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	return nil
}

func (r *mongoRepo) RotateRefreshHash(ctx context.Context, id, newHash string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"refreshHash": newHash,
		"lastUsedAt":  now,
		"updatedAt":   now,
	}})
	if err != nil {
		return fmt.Errorf("rotate refresh hash for session %s: %w", id, err)
	}
	return nil
}

func (r *mongoRepo) Revoke(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"revoked": true, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("revoke session %s: %w", id, err)
	}
	return nil
}

func (r *mongoRepo) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"principalId": principalID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("revoke all sessions for %s: %w", principalID, err)
	}
	return nil
}

func (r *mongoRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions before %s: %w", cutoff, err)
	}
	return res.DeletedCount, nil
}
