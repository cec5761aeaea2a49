package availability

import (
	"context"
	"fmt"

	"caretime/apierr"
	"caretime/models"
)

// Update implements §4.2 update: only notes/pricing/status (excluding
// "booked") may be patched, and never on a slot that is currently booked.
func (m *Manager) Update(ctx context.Context, slotID, callerProviderID string, patch models.AvailabilityUpdatePatch) error {
	slot, err := m.templates.GetSlotByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}
	if slot == nil || slot.ProviderID != callerProviderID {
		return apierr.NotFound("slot not found")
	}
	if slot.Status == models.SlotBooked {
		return apierr.New(apierr.KindBadInput, "cannot modify a booked slot")
	}
	if patch.Status != nil && *patch.Status == models.SlotBooked {
		return apierr.New(apierr.KindBadInput, "status cannot be set to booked directly")
	}

	if patch.Status != nil {
		slot.Status = *patch.Status
	}
	if patch.Notes != nil {
		slot.Notes = *patch.Notes
	}

	tmpl, err := m.templates.GetTemplateByID(ctx, slot.TemplateID)
	if err != nil {
		return fmt.Errorf("load owning template: %w", err)
	}
	if tmpl != nil && patch.Pricing != nil {
		tmpl.Pricing = patch.Pricing
		if err := m.templates.UpdateTemplate(ctx, tmpl); err != nil {
			return fmt.Errorf("update template pricing: %w", err)
		}
	}

	if err := m.templates.UpdateSlot(ctx, slot); err != nil {
		return fmt.Errorf("update slot %s: %w", slotID, err)
	}
	return nil
}
