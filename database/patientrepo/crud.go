package patientrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

func (r *mongoRepo) Create(ctx context.Context, p *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by id: %w", err)
	}
	return &p, nil
}

func (r *mongoRepo) Update(ctx context.Context, p *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": p.ID}, bson.M{"$set": p})
	if err != nil {
		return fmt.Errorf("update patient %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("patient %s not found", p.ID)
	}
	return nil
}
