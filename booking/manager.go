// Package booking implements the Booking Manager (§4.3 C7) — the
// concurrency-critical core. The reserve and cancel state transitions
// delegate their atomic compare-and-set to availabilityrepo, whose
// transaction.go is the direct adaptation of the teacher's
// BookSingleSlotTransactionally; this package owns the precondition
// checks (existence, timing, ownership) that must run before the CAS and
// the response shaping that runs after it. Grounded on
// services/booking/confirmation.go's pre-check-then-commit shape.
package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/database/availabilityrepo"
	"caretime/database/patientrepo"
	"caretime/models"
	"caretime/notify"
	"caretime/timeutil"
)

// Manager implements reserve/cancel/list_for_patient.
type Manager struct {
	slots    availabilityrepo.Repository
	patients patientrepo.Repository
	logger   *zap.Logger
	notifier *notify.Dispatcher
}

// New constructs a Manager.
func New(slots availabilityrepo.Repository, patients patientrepo.Repository, logger *zap.Logger) *Manager {
	return &Manager{slots: slots, patients: patients, logger: logger}
}

// WithNotifier attaches a booking-lifecycle notification dispatcher; nil
// leaves reserve/cancel silent, which tests rely on since they construct a
// Manager with no Redis-backed asynq client available.
func (m *Manager) WithNotifier(d *notify.Dispatcher) *Manager {
	m.notifier = d
	return m
}

// Reserve implements §4.3 reserve. The precondition checks here are
// advisory fast-paths; the actual race is resolved by availabilityrepo's
// ReserveSlot compare-and-set, which is the only thing §9's concurrency
// test can hold to exactly-one-winner.
func (m *Manager) Reserve(ctx context.Context, req models.BookAppointmentRequest) (*models.BookAppointmentResponse, error) {
	patient, err := m.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if patient == nil || !patient.IsActive {
		return nil, apierr.NotFound("patient not found")
	}

	slot, err := m.slots.GetSlotByID(ctx, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if slot == nil {
		return nil, apierr.NotFound("slot not found")
	}
	now := time.Now().UTC()
	if !slot.StartUTC.After(now) {
		return nil, apierr.New(apierr.KindBadInput, "slot start time has already passed")
	}
	if slot.Status != models.SlotAvailable {
		return nil, apierr.New(apierr.KindConflict, "slot is no longer available")
	}

	appointmentType := slot.AppointmentType
	if req.AppointmentType != "" {
		appointmentType = req.AppointmentType
	}

	ref, err := timeutil.BookingReference(now)
	if err != nil {
		return nil, err
	}

	err = m.slots.ReserveSlot(ctx, availabilityrepo.ReserveParams{
		SlotID:          slot.ID,
		ExpectedVersion: slot.StatusVersion,
		PatientID:       patient.ID,
		BookingRef:      ref,
		AppointmentType: appointmentType,
		Notes:           req.Notes,
		SpecialReqs:     req.SpecialRequirements,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("slot reserved",
		zap.String("slotId", slot.ID),
		zap.String("patientId", patient.ID),
		zap.String("bookingReference", ref),
	)

	if m.notifier != nil {
		if err := m.notifier.NotifyBooked(notify.AppointmentPayload{
			SlotID:           slot.ID,
			PatientID:        patient.ID,
			ProviderID:       slot.ProviderID,
			BookingReference: ref,
			StartUTC:         slot.StartUTC.Format(time.RFC3339),
		}); err != nil {
			m.logger.Warn("enqueue booking notification", zap.Error(err))
		}
	}

	return &models.BookAppointmentResponse{
		AppointmentID:    slot.ID,
		BookingReference: ref,
	}, nil
}

// Cancel implements §4.3 cancel.
func (m *Manager) Cancel(ctx context.Context, slotID, callerPatientID string) error {
	slot, err := m.slots.GetSlotByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}
	if slot == nil {
		return apierr.NotFound("slot not found")
	}
	if slot.PatientID == nil || *slot.PatientID != callerPatientID {
		return apierr.NotFound("slot not found")
	}
	if slot.Status != models.SlotBooked {
		return apierr.New(apierr.KindBadInput, "slot is not in a cancellable state")
	}
	now := time.Now().UTC()
	if !slot.StartUTC.After(now) {
		return apierr.New(apierr.KindBadInput, "cannot cancel a past appointment")
	}

	if err := m.slots.CancelSlot(ctx, slotID, now); err != nil {
		return err
	}

	m.logger.Info("slot cancelled", zap.String("slotId", slotID), zap.String("patientId", callerPatientID))

	if m.notifier != nil {
		if err := m.notifier.NotifyCancelled(notify.AppointmentPayload{
			SlotID:           slotID,
			PatientID:        callerPatientID,
			ProviderID:       slot.ProviderID,
			BookingReference: slot.BookingReference,
			StartUTC:         slot.StartUTC.Format(time.RFC3339),
		}); err != nil {
			m.logger.Warn("enqueue cancellation notification", zap.Error(err))
		}
	}
	return nil
}
