package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/database/availabilityrepo"
	"caretime/models"
)

// fakeSlots is a minimal in-memory stand-in for availabilityrepo.Repository,
// exercising only the methods the booking manager calls. The mutex stands
// in for Mongo's own per-document atomicity so the concurrency test below
// exercises a real race instead of a data race.
type fakeSlots struct {
	mu              sync.Mutex
	slots           map[string]*models.Slot
	reserveCalls    int
	reserveOutcomes []error // consumed in order by successive ReserveSlot calls, for concurrency simulation
}

func newFakeSlots(slots ...*models.Slot) *fakeSlots {
	m := map[string]*models.Slot{}
	for _, s := range slots {
		m[s.ID] = s
	}
	return &fakeSlots{slots: m}
}

func (f *fakeSlots) CreateTemplateWithSlots(context.Context, *models.AvailabilityTemplate, []models.Slot) error {
	return nil
}
func (f *fakeSlots) GetTemplateByID(context.Context, string) (*models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeSlots) ListTemplatesForProviderOnDate(context.Context, string, string) ([]models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeSlots) ListTemplatesByRecurringGroup(context.Context, string) ([]models.AvailabilityTemplate, error) {
	return nil, nil
}
func (f *fakeSlots) UpdateTemplate(context.Context, *models.AvailabilityTemplate) error { return nil }
func (f *fakeSlots) DeleteTemplate(context.Context, string) error                       { return nil }
func (f *fakeSlots) DeleteTemplatesByRecurringGroup(context.Context, string) error       { return nil }

func (f *fakeSlots) GetSlotByID(_ context.Context, id string) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}
func (f *fakeSlots) ListSlotsByTemplate(context.Context, string) ([]models.Slot, error) { return nil, nil }
func (f *fakeSlots) UpdateSlot(_ context.Context, s *models.Slot) error {
	f.slots[s.ID] = s
	return nil
}
func (f *fakeSlots) DeleteSlot(context.Context, string) error             { return nil }
func (f *fakeSlots) DeleteSlotsByTemplate(context.Context, string) error  { return nil }
func (f *fakeSlots) DeleteSlotsByRecurringGroup(context.Context, string) error { return nil }
func (f *fakeSlots) AnySlotBooked(context.Context, []string) (bool, error) { return false, nil }
func (f *fakeSlots) ListSlotsForPatient(_ context.Context, patientID string, filters models.PatientAppointmentFilters, page models.Page) ([]models.Slot, int64, error) {
	var out []models.Slot
	for _, s := range f.slots {
		if s.PatientID != nil && *s.PatientID == patientID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

// ReserveSlot emulates the real CAS: it only succeeds if the in-memory
// slot's status is still "available" and its version matches, mirroring
// what the Mongo conditional filter would do for a single racing caller.
func (f *fakeSlots) ReserveSlot(_ context.Context, p availabilityrepo.ReserveParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserveCalls++
	if len(f.reserveOutcomes) > 0 {
		err := f.reserveOutcomes[0]
		f.reserveOutcomes = f.reserveOutcomes[1:]
		if err != nil {
			return err
		}
	}
	s, ok := f.slots[p.SlotID]
	if !ok || s.Status != models.SlotAvailable || s.StatusVersion != p.ExpectedVersion {
		return apierr.New(apierr.KindConflict, "slot is no longer available")
	}
	patientID := p.PatientID
	s.Status = models.SlotBooked
	s.PatientID = &patientID
	s.BookingReference = p.BookingRef
	s.AppointmentType = p.AppointmentType
	s.StatusVersion++
	return nil
}

func (f *fakeSlots) CancelSlot(_ context.Context, slotID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.Status != models.SlotBooked {
		return apierr.New(apierr.KindBadInput, "slot is not in a cancellable state")
	}
	s.Status = models.SlotCancelled
	s.PatientID = nil
	s.StatusVersion++
	return nil
}

func (f *fakeSlots) ListSlotsForProvider(context.Context, string, models.ProviderAvailabilityFilters) ([]models.Slot, error) {
	return nil, nil
}
func (f *fakeSlots) SearchTemplates(context.Context, models.SearchFilters) ([]models.AvailabilityTemplate, error) {
	return nil, nil
}

func (f *fakeSlots) EnsureIndexes(context.Context) error { return nil }

type fakePatients struct {
	patients map[string]*models.Patient
}

func (f *fakePatients) GetByID(_ context.Context, id string) (*models.Patient, error) {
	return f.patients[id], nil
}
func (f *fakePatients) GetByEmail(context.Context, string) (*models.Patient, error) { return nil, nil }
func (f *fakePatients) GetByIdentifier(context.Context, string) (*models.Patient, error) { return nil, nil }
func (f *fakePatients) Create(context.Context, *models.Patient) error               { return nil }
func (f *fakePatients) EmailTaken(context.Context, string) (bool, error)            { return false, nil }
func (f *fakePatients) Update(context.Context, *models.Patient) error               { return nil }
func (f *fakePatients) RecordLoginSuccess(context.Context, string) error            { return nil }
func (f *fakePatients) RecordLoginFailure(context.Context, string, *time.Time) error { return nil }
func (f *fakePatients) ClearLockout(context.Context, string) error                  { return nil }
func (f *fakePatients) SetEmailVerified(context.Context, string, bool) error        { return nil }
func (f *fakePatients) SetPhoneVerified(context.Context, string, bool) error        { return nil }
func (f *fakePatients) EnsureIndexes(context.Context) error                         { return nil }

func newTestManager(slots *fakeSlots, patients *fakePatients) *Manager {
	return New(slots, patients, zap.NewNop())
}

func availableSlot(id string, start time.Time) *models.Slot {
	return &models.Slot{
		ID:              id,
		TemplateID:      "tmpl-1",
		ProviderID:      "prov-1",
		StartUTC:        start,
		EndUTC:          start.Add(30 * time.Minute),
		Status:          models.SlotAvailable,
		AppointmentType: models.AppointmentConsultation,
		StatusVersion:   0,
	}
}

func TestReserve_Success(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	slots := newFakeSlots(availableSlot("slot-1", future))
	patients := &fakePatients{patients: map[string]*models.Patient{
		"pat-1": {ID: "pat-1", IsActive: true},
	}}
	m := newTestManager(slots, patients)

	resp, err := m.Reserve(context.Background(), models.BookAppointmentRequest{
		SlotID:    "slot-1",
		PatientID: "pat-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "slot-1", resp.AppointmentID)
	assert.NotEmpty(t, resp.BookingReference)
	assert.Equal(t, models.SlotBooked, slots.slots["slot-1"].Status)
}

func TestReserve_SlotAlreadyBooked(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	booked := availableSlot("slot-1", future)
	booked.Status = models.SlotBooked
	slots := newFakeSlots(booked)
	patients := &fakePatients{patients: map[string]*models.Patient{
		"pat-1": {ID: "pat-1", IsActive: true},
	}}
	m := newTestManager(slots, patients)

	_, err := m.Reserve(context.Background(), models.BookAppointmentRequest{SlotID: "slot-1", PatientID: "pat-1"})
	require.Error(t, err)
	assert.Equal(t, apierr.KindConflict, apierr.KindOf(err))
}

func TestReserve_PastSlotRejected(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	slots := newFakeSlots(availableSlot("slot-1", past))
	patients := &fakePatients{patients: map[string]*models.Patient{
		"pat-1": {ID: "pat-1", IsActive: true},
	}}
	m := newTestManager(slots, patients)

	_, err := m.Reserve(context.Background(), models.BookAppointmentRequest{SlotID: "slot-1", PatientID: "pat-1"})
	require.Error(t, err)
	assert.Equal(t, apierr.KindBadInput, apierr.KindOf(err))
}

func TestReserve_InactivePatientRejected(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	slots := newFakeSlots(availableSlot("slot-1", future))
	patients := &fakePatients{patients: map[string]*models.Patient{
		"pat-1": {ID: "pat-1", IsActive: false},
	}}
	m := newTestManager(slots, patients)

	_, err := m.Reserve(context.Background(), models.BookAppointmentRequest{SlotID: "slot-1", PatientID: "pat-1"})
	require.Error(t, err)
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
}

func TestCancel_Success(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	s := availableSlot("slot-1", future)
	s.Status = models.SlotBooked
	patientID := "pat-1"
	s.PatientID = &patientID
	slots := newFakeSlots(s)
	m := newTestManager(slots, &fakePatients{patients: map[string]*models.Patient{}})

	err := m.Cancel(context.Background(), "slot-1", "pat-1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotCancelled, slots.slots["slot-1"].Status)
	assert.Nil(t, slots.slots["slot-1"].PatientID)
}

func TestCancel_WrongOwnerRejected(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	s := availableSlot("slot-1", future)
	s.Status = models.SlotBooked
	owner := "pat-1"
	s.PatientID = &owner
	slots := newFakeSlots(s)
	m := newTestManager(slots, &fakePatients{patients: map[string]*models.Patient{}})

	err := m.Cancel(context.Background(), "slot-1", "pat-2")
	require.Error(t, err)
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
}

func TestCancel_NotBookedRejected(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	s := availableSlot("slot-1", future)
	slots := newFakeSlots(s)
	m := newTestManager(slots, &fakePatients{patients: map[string]*models.Patient{}})

	err := m.Cancel(context.Background(), "slot-1", "pat-1")
	require.Error(t, err)
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
}

// TestReserve_ConcurrentCallersExactlyOneWins simulates the §9 concurrency
// contract at the manager level using the fake's CAS semantics: of N
// goroutines racing the same available slot, exactly one must succeed.
func TestReserve_ConcurrentCallersExactlyOneWins(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	slots := newFakeSlots(availableSlot("slot-1", future))
	patients := &fakePatients{patients: map[string]*models.Patient{
		"pat-1": {ID: "pat-1", IsActive: true},
		"pat-2": {ID: "pat-2", IsActive: true},
		"pat-3": {ID: "pat-3", IsActive: true},
	}}
	m := newTestManager(slots, patients)

	const n = 3
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		patientID := []string{"pat-1", "pat-2", "pat-3"}[i]
		go func(pid string) {
			_, err := m.Reserve(context.Background(), models.BookAppointmentRequest{SlotID: "slot-1", PatientID: pid})
			results <- err
		}(patientID)
	}

	successes := 0
	for i := 0; i < n; i++ {
		if err := <-results; err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}
