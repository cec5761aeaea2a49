package availabilityrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes mirrors the teacher's timeslot indexes: a unique id per
// collection, plus the (providerId, date) and recurringGroupId template
// indexes and the templateId, (providerId, startUtc), (patientId, startUtc),
// status and unique bookingReference slot indexes that the manager's query
// patterns (§4.2 conflict check, §4.4 search) hit.
func (r *mongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tmplIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetName("provider_date_idx")},
		{Keys: bson.D{{Key: "recurringGroupId", Value: 1}}, Options: options.Index().SetName("recurring_group_idx")},
	}
	if _, err := r.templates.Indexes().CreateMany(ctx, tmplIdx); err != nil {
		return fmt.Errorf("create template indexes: %w", err)
	}

	slotIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "templateId", Value: 1}}, Options: options.Index().SetName("template_idx")},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "startUtc", Value: 1}}, Options: options.Index().SetName("provider_start_idx")},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "startUtc", Value: 1}}, Options: options.Index().SetName("patient_start_idx")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status_idx")},
		{Keys: bson.D{{Key: "bookingReference", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_booking_reference")},
	}
	if _, err := r.slots.Indexes().CreateMany(ctx, slotIdx); err != nil {
		return fmt.Errorf("create slot indexes: %w", err)
	}
	return nil
}
