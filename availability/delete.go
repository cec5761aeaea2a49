package availability

import (
	"context"
	"fmt"

	"caretime/apierr"
	"caretime/models"
)

// Delete implements §4.2 delete: a single slot is removed unless booked;
// delete_recurring cascades to the whole recurring family, rejecting the
// entire operation (deleting nothing) if any sibling slot is booked.
func (m *Manager) Delete(ctx context.Context, slotID, callerProviderID string, opts models.AvailabilityDeleteOptions) error {
	slot, err := m.templates.GetSlotByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}
	if slot == nil || slot.ProviderID != callerProviderID {
		return apierr.NotFound("slot not found")
	}
	if slot.Status == models.SlotBooked {
		return apierr.New(apierr.KindBadInput, "cannot delete a booked slot")
	}

	tmpl, err := m.templates.GetTemplateByID(ctx, slot.TemplateID)
	if err != nil {
		return fmt.Errorf("load owning template: %w", err)
	}
	if tmpl == nil {
		return apierr.NotFound("template not found")
	}

	if opts.DeleteRecurring && tmpl.IsRecurring && tmpl.RecurringGroupID != "" {
		siblings, err := m.templates.ListTemplatesByRecurringGroup(ctx, tmpl.RecurringGroupID)
		if err != nil {
			return fmt.Errorf("load recurring siblings: %w", err)
		}
		groupIDs := make([]string, 0, len(siblings))
		for _, s := range siblings {
			groupIDs = append(groupIDs, s.ID)
		}

		booked, err := m.templates.AnySlotBooked(ctx, groupIDs)
		if err != nil {
			return fmt.Errorf("check recurring family for booked slots: %w", err)
		}
		if booked {
			return apierr.New(apierr.KindConflict, "a sibling slot in this recurring series is booked")
		}
		if err := m.templates.DeleteSlotsByRecurringGroup(ctx, tmpl.RecurringGroupID); err != nil {
			return fmt.Errorf("delete slots for recurring group: %w", err)
		}
		if err := m.templates.DeleteTemplatesByRecurringGroup(ctx, tmpl.RecurringGroupID); err != nil {
			return fmt.Errorf("delete templates for recurring group: %w", err)
		}
		return nil
	}

	if err := m.templates.DeleteSlot(ctx, slotID); err != nil {
		return fmt.Errorf("delete slot %s: %w", slotID, err)
	}
	return nil
}
