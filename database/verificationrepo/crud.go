package verificationrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

func (r *mongoRepo) Create(ctx context.Context, t *models.VerificationToken) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("create verification token: %w", err)
	}
	return nil
}

func (r *mongoRepo) GetActiveByToken(ctx context.Context, patientID string, channel models.VerificationChannel, token string) (*models.VerificationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"patientId": patientID,
		"channel":   channel,
		"token":     token,
		"used":      false,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	}
	var t models.VerificationToken
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get active verification token: %w", err)
	}
	return &t, nil
}

func (r *mongoRepo) MarkUsed(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"used": true}})
	if err != nil {
		return fmt.Errorf("mark verification token %s used: %w", id, err)
	}
	return nil
}

// InvalidateOutstanding marks every unused token of this kind for this
// patient as used, so requesting a new code invalidates any prior one.
func (r *mongoRepo) InvalidateOutstanding(ctx context.Context, patientID string, channel models.VerificationChannel) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"patientId": patientID, "channel": channel, "used": false}
	_, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"used": true}})
	if err != nil {
		return fmt.Errorf("invalidate outstanding verification tokens: %w", err)
	}
	return nil
}
