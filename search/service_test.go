package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caretime/models"
)

type fakeTemplates struct {
	templates []models.AvailabilityTemplate
	slots     map[string][]models.Slot
}

func (f *fakeTemplates) CreateTemplateWithSlots(context.Context, *models.AvailabilityTemplate, []models.Slot) error {
	return nil
}
func (f *fakeTemplates) GetTemplateByID(context.Context, string) (*models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeTemplates) ListTemplatesForProviderOnDate(context.Context, string, string) ([]models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeTemplates) ListTemplatesByRecurringGroup(context.Context, string) ([]models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeTemplates) SearchTemplates(context.Context, models.SearchFilters) ([]models.AvailabilityTemplate, error) {
	return f.templates, nil
}
func (f *fakeTemplates) UpdateTemplate(context.Context, *models.AvailabilityTemplate) error { return nil }
func (f *fakeTemplates) DeleteTemplate(context.Context, string) error                       { return nil }
func (f *fakeTemplates) DeleteTemplatesByRecurringGroup(context.Context, string) error       { return nil }
func (f *fakeTemplates) GetSlotByID(context.Context, string) (*models.Slot, error)           { return nil, nil }
func (f *fakeTemplates) ListSlotsByTemplate(_ context.Context, templateID string) ([]models.Slot, error) {
	return f.slots[templateID], nil
}
func (f *fakeTemplates) UpdateSlot(context.Context, *models.Slot) error                   { return nil }
func (f *fakeTemplates) DeleteSlot(context.Context, string) error                         { return nil }
func (f *fakeTemplates) DeleteSlotsByTemplate(context.Context, string) error               { return nil }
func (f *fakeTemplates) DeleteSlotsByRecurringGroup(context.Context, string) error         { return nil }
func (f *fakeTemplates) AnySlotBooked(context.Context, []string) (bool, error)             { return false, nil }
func (f *fakeTemplates) ListSlotsForPatient(context.Context, string, models.PatientAppointmentFilters, models.Page) ([]models.Slot, int64, error) {
	return nil, 0, nil
}
func (f *fakeTemplates) ListSlotsForProvider(context.Context, string, models.ProviderAvailabilityFilters) ([]models.Slot, error) {
	return nil, nil
}
func (f *fakeTemplates) EnsureIndexes(context.Context) error { return nil }

type fakeProviders struct {
	providers map[string]models.Provider
}

func (f *fakeProviders) ListByIDs(_ context.Context, ids []string) ([]models.Provider, error) {
	var out []models.Provider
	for _, id := range ids {
		if p, ok := f.providers[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeProviders) Create(context.Context, *models.Provider) error              { return nil }
func (f *fakeProviders) GetByID(context.Context, string) (*models.Provider, error)   { return nil, nil }
func (f *fakeProviders) GetByEmail(context.Context, string) (*models.Provider, error) { return nil, nil }
func (f *fakeProviders) GetByIdentifier(context.Context, string) (*models.Provider, error) { return nil, nil }
func (f *fakeProviders) EmailTaken(context.Context, string) (bool, error)            { return false, nil }
func (f *fakeProviders) Update(context.Context, *models.Provider) error              { return nil }
func (f *fakeProviders) RecordLoginSuccess(context.Context, string) error            { return nil }
func (f *fakeProviders) RecordLoginFailure(context.Context, string, *time.Time) error { return nil }
func (f *fakeProviders) ClearLockout(context.Context, string) error                  { return nil }
func (f *fakeProviders) EnsureIndexes(context.Context) error                         { return nil }

func TestSearch_SpecializationAndLocationFilter(t *testing.T) {
	base := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)
	templates := &fakeTemplates{
		templates: []models.AvailabilityTemplate{
			{ID: "tmpl-q", ProviderID: "prov-q", Date: "2030-04-01", Timezone: "UTC"},
			{ID: "tmpl-r", ProviderID: "prov-r", Date: "2030-04-01", Timezone: "UTC"},
		},
		slots: map[string][]models.Slot{
			"tmpl-q": {{ID: "slot-q", TemplateID: "tmpl-q", ProviderID: "prov-q", Status: models.SlotAvailable, StartUTC: base, EndUTC: base.Add(30 * time.Minute)}},
			"tmpl-r": {{ID: "slot-r", TemplateID: "tmpl-r", ProviderID: "prov-r", Status: models.SlotAvailable, StartUTC: base, EndUTC: base.Add(30 * time.Minute)}},
		},
	}
	providers := &fakeProviders{providers: map[string]models.Provider{
		"prov-q": {ID: "prov-q", LastName: "Quinn", Specialization: "Cardiology", ClinicAddress: models.Address{City: "New York", State: "NY"}},
		"prov-r": {ID: "prov-r", LastName: "Rivera", Specialization: "Dermatology", ClinicAddress: models.Address{City: "Boston", State: "MA"}},
	}}
	svc := New(templates, providers)

	results, err := svc.Search(context.Background(), models.SearchFilters{
		Specialization: "cardio",
		Location:       "NY",
		AvailableOnly:  true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "prov-q", results[0].Provider.ID)
	require.Len(t, results[0].Slots, 1)
	assert.Equal(t, "slot-q", results[0].Slots[0].SlotID)
}

func TestSearch_AvailableOnlyExcludesBookedSlots(t *testing.T) {
	base := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)
	templates := &fakeTemplates{
		templates: []models.AvailabilityTemplate{{ID: "tmpl-q", ProviderID: "prov-q", Date: "2030-04-01", Timezone: "UTC"}},
		slots: map[string][]models.Slot{
			"tmpl-q": {{ID: "slot-q", TemplateID: "tmpl-q", ProviderID: "prov-q", Status: models.SlotBooked, StartUTC: base, EndUTC: base.Add(30 * time.Minute)}},
		},
	}
	providers := &fakeProviders{providers: map[string]models.Provider{
		"prov-q": {ID: "prov-q", LastName: "Quinn"},
	}}
	svc := New(templates, providers)

	results, err := svc.Search(context.Background(), models.SearchFilters{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_OrdersProvidersBySlotCountThenName(t *testing.T) {
	base := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)
	templates := &fakeTemplates{
		templates: []models.AvailabilityTemplate{
			{ID: "tmpl-a", ProviderID: "prov-a", Date: "2030-04-01", Timezone: "UTC"},
			{ID: "tmpl-b", ProviderID: "prov-b", Date: "2030-04-01", Timezone: "UTC"},
		},
		slots: map[string][]models.Slot{
			"tmpl-a": {{ID: "s1", TemplateID: "tmpl-a", ProviderID: "prov-a", Status: models.SlotAvailable, StartUTC: base, EndUTC: base.Add(30 * time.Minute)}},
			"tmpl-b": {
				{ID: "s2", TemplateID: "tmpl-b", ProviderID: "prov-b", Status: models.SlotAvailable, StartUTC: base, EndUTC: base.Add(30 * time.Minute)},
				{ID: "s3", TemplateID: "tmpl-b", ProviderID: "prov-b", Status: models.SlotAvailable, StartUTC: base.Add(time.Hour), EndUTC: base.Add(90 * time.Minute)},
			},
		},
	}
	providers := &fakeProviders{providers: map[string]models.Provider{
		"prov-a": {ID: "prov-a", LastName: "Adams"},
		"prov-b": {ID: "prov-b", LastName: "Baker"},
	}}
	svc := New(templates, providers)

	results, err := svc.Search(context.Background(), models.SearchFilters{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "prov-b", results[0].Provider.ID) // more available slots sorts first
	assert.Equal(t, "prov-a", results[1].Provider.ID)
}
