package availabilityrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// CreateTemplateWithSlots adapts the teacher's
// BookSingleSlotTransactionally session pattern to a create path: both
// inserts commit together or neither does, so a crash mid-materialization
// never leaves an orphaned template with zero slots or vice versa.
func (r *mongoRepo) CreateTemplateWithSlots(ctx context.Context, tmpl *models.AvailabilityTemplate, slots []models.Slot) error {
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	tmpl.CreatedAt, tmpl.UpdatedAt = now, now

	docs := make([]interface{}, len(slots))
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.New().String()
		}
		slots[i].TemplateID = tmpl.ID
		slots[i].CreatedAt, slots[i].UpdatedAt = now, now
		docs[i] = slots[i]
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txn := func(sc mongo.SessionContext) error {
		if _, err := r.templates.InsertOne(sc, tmpl); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
		if len(docs) > 0 {
			if _, err := r.slots.InsertMany(sc, docs); err != nil {
				return fmt.Errorf("insert slots: %w", err)
			}
		}
		return nil
	}

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err != nil {
		return fmt.Errorf("create template with slots: %w", err)
	}
	return nil
}

func (r *mongoRepo) GetTemplateByID(ctx context.Context, id string) (*models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.AvailabilityTemplate
	if err := r.templates.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get template by id: %w", err)
	}
	return &t, nil
}

func (r *mongoRepo) UpdateTemplate(ctx context.Context, t *models.AvailabilityTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	t.UpdatedAt = time.Now().UTC()
	res, err := r.templates.UpdateOne(ctx, bson.M{"id": t.ID}, bson.M{"$set": t})
	if err != nil {
		return fmt.Errorf("update template %s: %w", t.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("template %s not found", t.ID)
	}
	return nil
}

func (r *mongoRepo) DeleteTemplate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.templates.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return nil
}

func (r *mongoRepo) DeleteTemplatesByRecurringGroup(ctx context.Context, groupID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.templates.DeleteMany(ctx, bson.M{"recurringGroupId": groupID}); err != nil {
		return fmt.Errorf("delete templates for recurring group %s: %w", groupID, err)
	}
	return nil
}

func (r *mongoRepo) GetSlotByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Slot
	if err := r.slots.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return &s, nil
}

func (r *mongoRepo) UpdateSlot(ctx context.Context, s *models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.UpdatedAt = time.Now().UTC()
	res, err := r.slots.UpdateOne(ctx, bson.M{"id": s.ID}, bson.M{"$set": bson.M{
		"status":    s.Status,
		"notes":     s.Notes,
		"updatedAt": s.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update slot %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("slot %s not found", s.ID)
	}
	return nil
}

func (r *mongoRepo) DeleteSlot(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.slots.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	return nil
}

func (r *mongoRepo) DeleteSlotsByTemplate(ctx context.Context, templateID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.slots.DeleteMany(ctx, bson.M{"templateId": templateID}); err != nil {
		return fmt.Errorf("delete slots for template %s: %w", templateID, err)
	}
	return nil
}

func (r *mongoRepo) DeleteSlotsByRecurringGroup(ctx context.Context, groupID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.templates.Find(ctx, bson.M{"recurringGroupId": groupID}, nil)
	if err != nil {
		return fmt.Errorf("find templates for recurring group %s: %w", groupID, err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var t models.AvailabilityTemplate
		if err := cursor.Decode(&t); err != nil {
			return fmt.Errorf("decode template: %w", err)
		}
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.slots.DeleteMany(ctx, bson.M{"templateId": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete slots for recurring group %s: %w", groupID, err)
	}
	return nil
}
