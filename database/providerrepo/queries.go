package providerrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

func (r *mongoRepo) GetByEmail(ctx context.Context, email string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by email: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}, "isActive": true})
	if err != nil {
		return nil, fmt.Errorf("list providers by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Provider
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"email": strings.ToLower(identifier)},
		{"phoneNumber": identifier},
	}}
	var p models.Provider
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by identifier: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("check provider email: %w", err)
	}
	return n > 0, nil
}

// RecordLoginSuccess resets the failed-attempt counter and lockout per
// §4.5's "successful login clears the counter" rule.
func (r *mongoRepo) RecordLoginSuccess(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"failedLoginCount": 0,
		"lockedUntil":      nil,
		"lastLoginAt":      now,
		"updatedAt":        now,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("record provider login success: %w", err)
	}
	return nil
}

// RecordLoginFailure increments the failed-attempt counter and, when
// lockUntil is non-nil, sets the lockout expiry (§4.5 lockout policy:
// after 5 failed logins a provider is locked for 30 minutes).
func (r *mongoRepo) RecordLoginFailure(ctx context.Context, id string, lockUntil *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if lockUntil != nil {
		set["lockedUntil"] = *lockUntil
	}
	update := bson.M{
		"$inc": bson.M{"failedLoginCount": 1},
		"$set": set,
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("record provider login failure: %w", err)
	}
	return nil
}

func (r *mongoRepo) ClearLockout(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"failedLoginCount": 0, "lockedUntil": nil}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("clear provider lockout: %w", err)
	}
	return nil
}
