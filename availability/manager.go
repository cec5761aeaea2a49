// Package availability implements the Availability Manager (§4.2 C6): it
// turns a provider's declared local-time window into persisted templates
// and their materialized slots, enforces the no-overlap invariant, and
// guards patch/delete against touching a booked slot. Grounded on the
// teacher's services/booking/slotBuilder.go for the enrich-then-build
// shape and services/provider/timeslotCrud.go for the create/update/delete
// split, generalized onto the store-driven conflict check and
// atomic-transaction materialization §4.2 requires.
package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/database/availabilityrepo"
	"caretime/database/providerrepo"
	"caretime/models"
	"caretime/timeutil"
)

const (
	minSlotDuration = 15
	maxSlotDuration = 480
	maxBreakMinutes = 120
)

// Manager implements Create/Update/Delete for availability templates.
type Manager struct {
	templates availabilityrepo.Repository
	providers providerrepo.Repository
	logger    *zap.Logger
}

// New constructs a Manager.
func New(templates availabilityrepo.Repository, providers providerrepo.Repository, logger *zap.Logger) *Manager {
	return &Manager{templates: templates, providers: providers, logger: logger}
}

// Create implements §4.2 create: validates the request, expands recurrence,
// checks for overlap against the provider's existing templates on every
// target date, and materializes template+slots atomically per date.
func (m *Manager) Create(ctx context.Context, providerID string, req models.AvailabilityCreateRequest) (*models.AvailabilityCreateSummary, error) {
	provider, err := m.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil || !provider.IsActive {
		return nil, apierr.NotFound("provider not found")
	}

	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	startDate, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	endDate := startDate
	if req.IsRecurring {
		endDate, err = timeutil.ParseDate(req.RecurrenceEndDate)
		if err != nil {
			return nil, err
		}
	}
	targetDates, err := timeutil.ExpandRecurrence(startDate, endDate, string(req.RecurrencePattern))
	if err != nil {
		return nil, err
	}

	startMin, err := timeutil.ParseHM(req.StartTime)
	if err != nil {
		return nil, err
	}
	endMin, err := timeutil.ParseHM(req.EndTime)
	if err != nil {
		return nil, err
	}

	// §4.2 step 2: "date not in the past (local to tz)" — checked against
	// the declared start of spec.date only, not every expanded occurrence.
	baseStartUTC, err := timeutil.ToUTC(startDate, startMin, req.Timezone)
	if err != nil {
		return nil, err
	}
	if !baseStartUTC.After(time.Now().UTC()) {
		return nil, apierr.New(apierr.KindBadInput, "date must not be in the past")
	}

	var recurringGroupID string
	if req.IsRecurring {
		ref, err := timeutil.BookingReference(startDate)
		if err != nil {
			return nil, err
		}
		recurringGroupID = ref
	}

	var (
		templateIDs    []string
		totalSlots     int
		firstDate, lastDate string
	)

	for _, d := range targetDates {
		dateStr := timeutil.FormatDate(d)
		existing, err := m.templates.ListTemplatesForProviderOnDate(ctx, providerID, dateStr)
		if err != nil {
			return nil, fmt.Errorf("load existing templates for %s: %w", dateStr, err)
		}
		newStartUTC, err := timeutil.ToUTC(d, startMin, req.Timezone)
		if err != nil {
			return nil, err
		}
		newEndUTC, err := timeutil.ToUTC(d, endMin, req.Timezone)
		if err != nil {
			return nil, err
		}
		// Every stored template is "non-cancelled" by construction: a
		// template is removed outright on delete (§3 lifecycle), so
		// there is no separate cancelled state to filter out here.
		for _, ex := range existing {
			exStartMin, _ := timeutil.ParseHM(string(ex.StartTime))
			exEndMin, _ := timeutil.ParseHM(string(ex.EndTime))
			exStartUTC, _ := timeutil.ToUTC(d, exStartMin, ex.Timezone)
			exEndUTC, _ := timeutil.ToUTC(d, exEndMin, ex.Timezone)
			if timeutil.Conflict(newStartUTC, newEndUTC, exStartUTC, exEndUTC) {
				return nil, apierr.Newf(apierr.KindConflict, "availability window overlaps an existing template on %s", dateStr)
			}
		}

		tmpl := models.AvailabilityTemplate{
			ProviderID:           providerID,
			Date:                 dateStr,
			StartTime:            models.TimeOfDay(req.StartTime),
			EndTime:              models.TimeOfDay(req.EndTime),
			Timezone:             req.Timezone,
			SlotDurationMinutes:  req.SlotDurationMinutes,
			BreakDurationMinutes: req.BreakDurationMinutes,
			IsRecurring:          req.IsRecurring,
			RecurrencePattern:    req.RecurrencePattern,
			RecurrenceEndDate:    req.RecurrenceEndDate,
			MaxBookingsPerSlot:   req.MaxBookingsPerSlot,
			AppointmentType:      req.AppointmentType,
			Location:             req.Location,
			Pricing:              req.Pricing,
			SpecialRequirements:  req.SpecialRequirements,
			Notes:                req.Notes,
			RecurringGroupID:     recurringGroupID,
		}

		starts := timeutil.EnumerateSlots(startMin, endMin, req.SlotDurationMinutes, req.BreakDurationMinutes)
		slots := make([]models.Slot, 0, len(starts))
		for _, s := range starts {
			slotStartUTC, err := timeutil.ToUTC(d, s, req.Timezone)
			if err != nil {
				return nil, err
			}
			slotEndUTC, err := timeutil.ToUTC(d, s+req.SlotDurationMinutes, req.Timezone)
			if err != nil {
				return nil, err
			}
			ref, err := timeutil.BookingReference(d)
			if err != nil {
				return nil, err
			}
			slots = append(slots, models.Slot{
				ProviderID:       providerID,
				StartUTC:         slotStartUTC,
				EndUTC:           slotEndUTC,
				Status:           models.SlotAvailable,
				AppointmentType:  req.AppointmentType,
				BookingReference: ref,
			})
		}

		if err := m.templates.CreateTemplateWithSlots(ctx, &tmpl, slots); err != nil {
			return nil, fmt.Errorf("materialize template for %s: %w", dateStr, err)
		}
		templateIDs = append(templateIDs, tmpl.ID)
		totalSlots += len(slots)
		if firstDate == "" || dateStr < firstDate {
			firstDate = dateStr
		}
		if lastDate == "" || dateStr > lastDate {
			lastDate = dateStr
		}
	}

	m.logger.Info("availability created",
		zap.String("providerId", providerID),
		zap.Int("templates", len(templateIDs)),
		zap.Int("slots", totalSlots),
	)

	return &models.AvailabilityCreateSummary{
		TemplateIDs:                templateIDs,
		SlotsCreated:               totalSlots,
		DateRangeStart:             firstDate,
		DateRangeEnd:               lastDate,
		TotalAppointmentsAvailable: totalSlots,
	}, nil
}

func validateCreateRequest(req models.AvailabilityCreateRequest) error {
	fields := map[string][]string{}

	if _, err := timeutil.ParseDate(req.Date); err != nil {
		fields["date"] = append(fields["date"], "invalid date")
	}
	startMin, err1 := timeutil.ParseHM(req.StartTime)
	endMin, err2 := timeutil.ParseHM(req.EndTime)
	if err1 != nil {
		fields["startTime"] = append(fields["startTime"], "invalid time")
	}
	if err2 != nil {
		fields["endTime"] = append(fields["endTime"], "invalid time")
	}
	if err1 == nil && err2 == nil && startMin >= endMin {
		fields["endTime"] = append(fields["endTime"], "must be after startTime")
	}
	if req.IsRecurring {
		if req.RecurrencePattern == "" {
			fields["recurrencePattern"] = append(fields["recurrencePattern"], "required when isRecurring")
		}
		if req.RecurrenceEndDate == "" {
			fields["recurrenceEndDate"] = append(fields["recurrenceEndDate"], "required when isRecurring")
		}
	}
	if req.SlotDurationMinutes < minSlotDuration || req.SlotDurationMinutes > maxSlotDuration {
		fields["slotDurationMinutes"] = append(fields["slotDurationMinutes"], fmt.Sprintf("must be between %d and %d", minSlotDuration, maxSlotDuration))
	}
	if req.BreakDurationMinutes < 0 || req.BreakDurationMinutes > maxBreakMinutes {
		fields["breakDurationMinutes"] = append(fields["breakDurationMinutes"], fmt.Sprintf("must be between 0 and %d", maxBreakMinutes))
	}
	// Single-booking-per-slot semantics (see DESIGN.md Open Question
	// decision): capacities above 1 aren't supported by the booking path.
	if req.MaxBookingsPerSlot > 1 {
		fields["maxBookingsPerSlot"] = append(fields["maxBookingsPerSlot"], "must be 1 under single-booking-per-slot semantics")
	}
	if req.MaxBookingsPerSlot == 0 {
		req.MaxBookingsPerSlot = 1
	}

	if len(fields) > 0 {
		return apierr.BadInput(fields)
	}
	return nil
}
