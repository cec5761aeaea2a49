package availabilityrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"caretime/models"
	"caretime/timeutil"
)

func (r *mongoRepo) ListTemplatesForProviderOnDate(ctx context.Context, providerID, date string) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date}
	cursor, err := r.templates.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list templates for provider %s on %s: %w", providerID, date, err)
	}
	defer cursor.Close(ctx)

	var out []models.AvailabilityTemplate
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) ListTemplatesByRecurringGroup(ctx context.Context, groupID string) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.templates.Find(ctx, bson.M{"recurringGroupId": groupID})
	if err != nil {
		return nil, fmt.Errorf("list templates for recurring group %s: %w", groupID, err)
	}
	defer cursor.Close(ctx)

	var out []models.AvailabilityTemplate
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) ListSlotsByTemplate(ctx context.Context, templateID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.slots.Find(ctx, bson.M{"templateId": templateID})
	if err != nil {
		return nil, fmt.Errorf("list slots for template %s: %w", templateID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Slot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) SearchTemplates(ctx context.Context, filters models.SearchFilters) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	switch {
	case filters.Date != "":
		filter["date"] = filters.Date
	case filters.StartDate != "" || filters.EndDate != "":
		dateRange := bson.M{}
		if filters.StartDate != "" {
			dateRange["$gte"] = filters.StartDate
		}
		if filters.EndDate != "" {
			dateRange["$lte"] = filters.EndDate
		}
		filter["date"] = dateRange
	}
	if filters.AppointmentType != "" {
		filter["appointmentType"] = filters.AppointmentType
	}
	if filters.MaxPrice != nil {
		filter["pricing.baseFee"] = bson.M{"$lte": *filters.MaxPrice}
	}
	if filters.InsuranceAccepted != nil {
		filter["pricing.insuranceAccepted"] = *filters.InsuranceAccepted
	}

	cursor, err := r.templates.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.AvailabilityTemplate
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) ListSlotsForPatient(ctx context.Context, patientID string, filters models.PatientAppointmentFilters, page models.Page) ([]models.Slot, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"patientId": patientID}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.AppointmentType != "" {
		filter["appointmentType"] = filters.AppointmentType
	}
	if filters.StartDate != "" || filters.EndDate != "" {
		startRange := bson.M{}
		if filters.StartDate != "" {
			if start, err := timeutil.ParseDate(filters.StartDate); err == nil {
				startRange["$gte"] = start
			}
		}
		if filters.EndDate != "" {
			if end, err := timeutil.ParseDate(filters.EndDate); err == nil {
				startRange["$lte"] = end.Add(24 * time.Hour)
			}
		}
		if len(startRange) > 0 {
			filter["startUtc"] = startRange
		}
	}

	total, err := r.slots.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count slots for patient %s: %w", patientID, err)
	}

	limit := int64(page.Limit)
	skip := int64((page.Page - 1) * page.Limit)
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().SetSort(bson.M{"startUtc": -1}).SetLimit(limit).SetSkip(skip)

	cursor, err := r.slots.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list slots for patient %s: %w", patientID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Slot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode slots: %w", err)
	}
	return out, total, nil
}

func (r *mongoRepo) ListSlotsForProvider(ctx context.Context, providerID string, filters models.ProviderAvailabilityFilters) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.AppointmentType != "" {
		filter["appointmentType"] = filters.AppointmentType
	}
	if filters.StartDate != "" || filters.EndDate != "" {
		startRange := bson.M{}
		if filters.StartDate != "" {
			if start, err := timeutil.ParseDate(filters.StartDate); err == nil {
				startRange["$gte"] = start
			}
		}
		if filters.EndDate != "" {
			if end, err := timeutil.ParseDate(filters.EndDate); err == nil {
				startRange["$lte"] = end.Add(24 * time.Hour)
			}
		}
		if len(startRange) > 0 {
			filter["startUtc"] = startRange
		}
	}

	opts := options.Find().SetSort(bson.M{"startUtc": 1})
	cursor, err := r.slots.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list slots for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Slot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}
	return out, nil
}

func (r *mongoRepo) AnySlotBooked(ctx context.Context, templateIDs []string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"templateId": bson.M{"$in": templateIDs}, "status": "booked"}
	n, err := r.slots.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("check booked slots: %w", err)
	}
	return n > 0, nil
}
