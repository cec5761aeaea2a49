package booking

import (
	"context"
	"fmt"

	"caretime/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListForPatient implements §4.3 list_for_patient: filtered, paginated,
// ordered by start descending. No fields are redacted on this path.
func (m *Manager) ListForPatient(ctx context.Context, patientID string, filters models.PatientAppointmentFilters, page models.Page) (*models.PagedSlots, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit <= 0 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}

	slots, total, err := m.slots.ListSlotsForPatient(ctx, patientID, filters, page)
	if err != nil {
		return nil, fmt.Errorf("list appointments for patient %s: %w", patientID, err)
	}

	items := make([]models.SlotProjection, 0, len(slots))
	for _, s := range slots {
		items = append(items, models.SlotProjection{
			SlotID:           s.ID,
			TemplateID:       s.TemplateID,
			ProviderID:       s.ProviderID,
			Date:             s.StartUTC.Format("2006-01-02"),
			StartTime:        s.StartUTC.Format("15:04"),
			EndTime:          s.EndUTC.Format("15:04"),
			Status:           s.Status,
			AppointmentType:  s.AppointmentType,
			BookingReference: s.BookingReference,
		})
	}

	return &models.PagedSlots{
		Total: int(total),
		Page:  page.Page,
		Limit: page.Limit,
		Items: items,
	}, nil
}
