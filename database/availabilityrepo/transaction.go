package availabilityrepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"caretime/apierr"
)

// ReserveSlot is the booking race's single row of truth (§4.3, §9). It
// adapts the teacher's BookSingleSlotTransactionally: a session-scoped
// transaction wraps the conditional slot update and the template occupancy
// bump so a client timeout mid-transaction can never leave one mutated
// without the other. The conditional filter (status=available AND
// statusVersion=expectedVersion) is what makes concurrent reservers of the
// same slot race on a single document instead of a in-process lock — only
// one UpdateOne call can match, because the loser's view of the document
// is already stale by the time it runs.
//
// This implementation chose single-booking-per-slot semantics: a slot's
// occupancy only ever moves 0->1->0, and MaxBookingsPerSlot>1 is rejected
// at template creation (see availability.Manager). The alternative
// multi-booking interpretation spec.md's Open Questions leaves available
// is not implemented here.
func (r *mongoRepo) ReserveSlot(ctx context.Context, params ReserveParams) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":            params.SlotID,
			"status":        "available",
			"statusVersion": params.ExpectedVersion,
		}
		set := bson.M{
			"status":           "booked",
			"patientId":        params.PatientID,
			"bookingReference": params.BookingRef,
			"appointmentType":  params.AppointmentType,
			"updatedAt":        params.Now,
		}
		if params.Notes != "" {
			set["notes"] = params.Notes
		}
		if len(params.SpecialReqs) > 0 {
			set["specialRequirements"] = params.SpecialReqs
		}
		update := bson.M{
			"$set": set,
			"$inc": bson.M{"statusVersion": 1},
		}
		res, err := r.slots.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if res.MatchedCount == 0 {
			return apierr.New(apierr.KindConflict, "slot is no longer available")
		}

		var slot struct {
			TemplateID string `bson:"templateId"`
		}
		if err := r.slots.FindOne(sc, bson.M{"id": params.SlotID}).Decode(&slot); err != nil {
			return fmt.Errorf("load reserved slot's template: %w", err)
		}
		occRes, err := r.templates.UpdateOne(sc, bson.M{"id": slot.TemplateID}, bson.M{
			"$inc": bson.M{"occupancy": 1},
			"$set": bson.M{"updatedAt": params.Now},
		})
		if err != nil {
			return fmt.Errorf("increment template occupancy: %w", err)
		}
		if occRes.MatchedCount == 0 {
			return fmt.Errorf("template %s for reserved slot %s not found", slot.TemplateID, params.SlotID)
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
		if apierr.KindOf(err) == apierr.KindConflict {
			return err
		}
		return fmt.Errorf("reserve slot transaction: %w", err)
	}
	return nil
}

// CancelSlot is the mirror transition (§4.3): status booked->cancelled,
// patient_id nullified (the original's behavior; documented per spec.md
// §9's note that preserving patient_id is an equally valid choice), and
// the owning template's occupancy decremented by 1 in the same transaction.
func (r *mongoRepo) CancelSlot(ctx context.Context, slotID string, now time.Time) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": slotID, "status": "booked"}
		update := bson.M{
			"$set": bson.M{
				"status":    "cancelled",
				"patientId": nil,
				"updatedAt": now,
			},
			"$inc": bson.M{"statusVersion": 1},
		}
		res, err := r.slots.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("cancel slot: %w", err)
		}
		if res.MatchedCount == 0 {
			return apierr.New(apierr.KindBadInput, "slot is not in a cancellable state")
		}

		var slot struct {
			TemplateID string `bson:"templateId"`
		}
		if err := r.slots.FindOne(sc, bson.M{"id": slotID}).Decode(&slot); err != nil {
			return fmt.Errorf("load cancelled slot's template: %w", err)
		}
		if _, err := r.templates.UpdateOne(sc, bson.M{"id": slot.TemplateID}, bson.M{
			"$inc": bson.M{"occupancy": -1},
			"$set": bson.M{"updatedAt": now},
		}); err != nil {
			return fmt.Errorf("decrement template occupancy: %w", err)
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
		if apierr.KindOf(err) == apierr.KindBadInput {
			return err
		}
		return fmt.Errorf("cancel slot transaction: %w", err)
	}
	return nil
}
