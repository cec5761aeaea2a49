package patientrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

func (r *mongoRepo) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by email: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"email": strings.ToLower(identifier)},
		{"phoneNumber": identifier},
	}}
	var p models.Patient
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by identifier: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("check patient email: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRepo) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"emailVerified": verified, "updatedAt": time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("set patient email verified: %w", err)
	}
	return nil
}

func (r *mongoRepo) SetPhoneVerified(ctx context.Context, id string, verified bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"phoneVerified": verified, "updatedAt": time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("set patient phone verified: %w", err)
	}
	return nil
}

// RecordLoginSuccess resets the failed-attempt counter per §4.5.
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
		return fmt.Errorf("record patient login success: %w", err)
	}
	return nil
}

// RecordLoginFailure increments the failed-attempt counter and, when
// lockUntil is non-nil, locks the account (§4.5: after 3 failed logins a
// patient is locked for 1 hour).
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
		return fmt.Errorf("record patient login failure: %w", err)
	}
	return nil
}

func (r *mongoRepo) ClearLockout(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"failedLoginCount": 0, "lockedUntil": nil}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("clear patient lockout: %w", err)
	}
	return nil
}
