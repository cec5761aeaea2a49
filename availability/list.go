package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"caretime/models"
)

// ListForProvider implements the §6 grouped-by-date provider availability
// listing: fetch the provider's slots in range, project each to display
// form in tz (falling back to UTC when tz doesn't name a loadable IANA
// zone), and group the result by date with per-day booked/available
// counters. Grounded on the shape of search.Service's projectSlot, adapted
// here for a single provider's own schedule view rather than a cross-
// provider search result.
func (m *Manager) ListForProvider(ctx context.Context, providerID string, filters models.ProviderAvailabilityFilters, tz string) ([]models.ProviderAvailabilityDay, error) {
	slots, err := m.templates.ListSlotsForProvider(ctx, providerID, filters)
	if err != nil {
		return nil, fmt.Errorf("list slots for provider %s: %w", providerID, err)
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	byDate := map[string]*models.ProviderAvailabilityDay{}
	var order []string
	for _, slot := range slots {
		start := slot.StartUTC.In(loc)
		end := slot.EndUTC.In(loc)
		dateStr := start.Format("2006-01-02")

		day, ok := byDate[dateStr]
		if !ok {
			day = &models.ProviderAvailabilityDay{Date: dateStr}
			byDate[dateStr] = day
			order = append(order, dateStr)
		}
		day.Slots = append(day.Slots, models.SlotProjection{
			SlotID:           slot.ID,
			TemplateID:       slot.TemplateID,
			ProviderID:       slot.ProviderID,
			Date:             dateStr,
			StartTime:        start.Format("15:04"),
			EndTime:          end.Format("15:04"),
			Status:           slot.Status,
			AppointmentType:  slot.AppointmentType,
			BookingReference: slot.BookingReference,
		})
		day.TotalSlots++
		switch slot.Status {
		case models.SlotAvailable:
			day.AvailableSlots++
		case models.SlotBooked:
			day.BookedSlots++
		}
	}

	sort.Strings(order)
	out := make([]models.ProviderAvailabilityDay, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out, nil
}
