// Package search implements the Search Service (§4.4 C8): an
// unauthenticated join of the provider directory against materialized
// slots, narrowed by a multi-field filter set. Grounded on the teacher's
// services/booking package for the "load templates, load their providers,
// fan out to child slots" shape — the teacher has no cross-provider search
// of its own, so the join itself is built fresh in that same layering.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"caretime/database/availabilityrepo"
	"caretime/database/providerrepo"
	"caretime/models"
)

// Service answers §4.4 search queries.
type Service struct {
	templates availabilityrepo.Repository
	providers providerrepo.Repository
}

// New constructs a Service.
func New(templates availabilityrepo.Repository, providers providerrepo.Repository) *Service {
	return &Service{templates: templates, providers: providers}
}

// Search runs the §4.4 algorithm: query templates, join providers,
// apply in-memory substring filters, fetch surviving slots, group by
// provider. Non-available slots are dropped only when filters.AvailableOnly
// is set; the HTTP handler sets it unless the query says
// available_only=false.
func (s *Service) Search(ctx context.Context, filters models.SearchFilters) ([]models.ProviderSearchResult, error) {
	templates, err := s.templates.SearchTemplates(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	if len(templates) == 0 {
		return []models.ProviderSearchResult{}, nil
	}

	providerIDs := distinctProviderIDs(templates)
	providers, err := s.providers.ListByIDs(ctx, providerIDs)
	if err != nil {
		return nil, fmt.Errorf("load providers for search: %w", err)
	}
	byID := make(map[string]models.Provider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	specFilter := strings.ToLower(filters.Specialization)
	locFilter := strings.ToLower(filters.Location)

	type providerSlots struct {
		summary models.ProviderSummary
		slots   []models.Slot
	}
	grouped := map[string]*providerSlots{}
	var order []string
	tzByProvider := map[string]string{}

	for _, tmpl := range templates {
		provider, ok := byID[tmpl.ProviderID]
		if !ok {
			continue // provider inactive or not found: excluded from public search
		}
		if specFilter != "" && !strings.Contains(strings.ToLower(provider.Specialization), specFilter) {
			continue
		}
		if locFilter != "" && !addressContains(provider.ClinicAddress, locFilter) {
			continue
		}

		slotsForTmpl, err := s.templates.ListSlotsByTemplate(ctx, tmpl.ID)
		if err != nil {
			return nil, fmt.Errorf("load slots for template %s: %w", tmpl.ID, err)
		}

		displayTZ := filters.Timezone
		if displayTZ == "" {
			displayTZ = tmpl.Timezone
		}

		for _, slot := range slotsForTmpl {
			if filters.AvailableOnly && slot.Status != models.SlotAvailable {
				continue
			}
			res, exists := grouped[tmpl.ProviderID]
			if !exists {
				res = &providerSlots{summary: provider.Summary()}
				grouped[tmpl.ProviderID] = res
				order = append(order, tmpl.ProviderID)
				tzByProvider[tmpl.ProviderID] = displayTZ
			}
			res.slots = append(res.slots, slot)
		}
	}

	results := make([]models.ProviderSearchResult, 0, len(order))
	for _, id := range order {
		r := grouped[id]
		sort.Slice(r.slots, func(i, j int) bool { return r.slots[i].StartUTC.Before(r.slots[j].StartUTC) })
		projections := make([]models.SlotProjection, 0, len(r.slots))
		for _, slot := range r.slots {
			projections = append(projections, projectSlot(slot, tzByProvider[id]))
		}
		results = append(results, models.ProviderSearchResult{Provider: r.summary, Slots: projections})
	}
	// Providers ordered by returned-slot count descending, then last name, for
	// a deterministic response (§4.4: "pick one and document it").
	sort.SliceStable(results, func(i, j int) bool {
		if len(results[i].Slots) != len(results[j].Slots) {
			return len(results[i].Slots) > len(results[j].Slots)
		}
		return results[i].Provider.LastName < results[j].Provider.LastName
	})
	return results, nil
}

func distinctProviderIDs(templates []models.AvailabilityTemplate) []string {
	seen := map[string]bool{}
	var ids []string
	for _, t := range templates {
		if !seen[t.ProviderID] {
			seen[t.ProviderID] = true
			ids = append(ids, t.ProviderID)
		}
	}
	return ids
}

func addressContains(addr models.Address, substr string) bool {
	fields := []string{addr.Street, addr.City, addr.State, addr.Zip}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}
	return false
}

// projectSlot formats the slot's start/end in displayTZ when it names a
// loadable IANA zone, falling back to UTC clock values otherwise.
func projectSlot(slot models.Slot, displayTZ string) models.SlotProjection {
	start, end := slot.StartUTC, slot.EndUTC
	if loc, err := time.LoadLocation(displayTZ); err == nil {
		start = start.In(loc)
		end = end.In(loc)
	}
	return models.SlotProjection{
		SlotID:           slot.ID,
		TemplateID:       slot.TemplateID,
		ProviderID:       slot.ProviderID,
		Date:             start.Format("2006-01-02"),
		StartTime:        start.Format("15:04"),
		EndTime:          end.Format("15:04"),
		Status:           slot.Status,
		AppointmentType:  slot.AppointmentType,
		BookingReference: slot.BookingReference,
	}
}
