// Package availabilityrepo persists availability templates and their
// derived slots, and owns the transactional slot-materialization and
// compare-and-set reserve/cancel paths §4.1/§4.2/§4.3/§9 require. Grounded
// on the teacher's database/repository/timeslot package for the
// interface/crud/queries/indexes split and on
// database/repository/scheduler/transaction.go for the
// StartSession/WithSession/conditional-filter pattern the booking manager
// (C7) needs for its single-row CAS.
package availabilityrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"caretime/models"
)

// Repository defines the persistence operations for templates and slots.
type Repository interface {
	// CreateTemplateWithSlots inserts one template and its materialized
	// slots in a single transaction (§4.2: "materializing a template's
	// slots is all-or-nothing").
	CreateTemplateWithSlots(ctx context.Context, tmpl *models.AvailabilityTemplate, slots []models.Slot) error

	GetTemplateByID(ctx context.Context, id string) (*models.AvailabilityTemplate, error)
	ListTemplatesForProviderOnDate(ctx context.Context, providerID, date string) ([]models.AvailabilityTemplate, error)
	ListTemplatesByRecurringGroup(ctx context.Context, groupID string) ([]models.AvailabilityTemplate, error)
	// SearchTemplates implements §4.4 step 1: templates matching
	// date/date-range, appointment type, and pricing filters. Specialization
	// and location substring filters are applied in-memory by the caller
	// against the joined provider record, not here.
	SearchTemplates(ctx context.Context, filters models.SearchFilters) ([]models.AvailabilityTemplate, error)
	UpdateTemplate(ctx context.Context, tmpl *models.AvailabilityTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	DeleteTemplatesByRecurringGroup(ctx context.Context, groupID string) error

	GetSlotByID(ctx context.Context, id string) (*models.Slot, error)
	ListSlotsByTemplate(ctx context.Context, templateID string) ([]models.Slot, error)
	// ListSlotsForProvider implements the §6 grouped-by-date provider
	// availability listing: all of a provider's slots in a date range,
	// optionally narrowed by status/appointment type.
	ListSlotsForProvider(ctx context.Context, providerID string, filters models.ProviderAvailabilityFilters) ([]models.Slot, error)
	// ListSlotsForPatient implements §4.3 list_for_patient: filtered,
	// paginated, ordered by start descending, returning the total match
	// count alongside the page.
	ListSlotsForPatient(ctx context.Context, patientID string, filters models.PatientAppointmentFilters, page models.Page) ([]models.Slot, int64, error)
	// UpdateSlot persists status/notes changes to a single slot (§4.2
	// update's permitted patch fields). Start/end rewrites are not
	// supported and are not part of this method's surface.
	UpdateSlot(ctx context.Context, slot *models.Slot) error
	DeleteSlot(ctx context.Context, id string) error
	DeleteSlotsByTemplate(ctx context.Context, templateID string) error
	DeleteSlotsByRecurringGroup(ctx context.Context, groupID string) error
	// AnySlotBooked reports whether any slot in templateIDs is currently
	// booked, used to guard delete/cascading-delete (§4.2 delete).
	AnySlotBooked(ctx context.Context, templateIDs []string) (bool, error)

	// ReserveSlot performs the §4.3/§9 atomic reserve: conditional update
	// filtering on (id, status=available, statusVersion=expectedVersion)
	// inside a transaction that also increments the owning template's
	// occupancy. Returns apierr.KindConflict if the filter matched nothing.
	ReserveSlot(ctx context.Context, params ReserveParams) error

	// CancelSlot performs the §4.3 atomic cancel: conditional update
	// filtering on (id, status=booked) inside a transaction that also
	// decrements the owning template's occupancy.
	CancelSlot(ctx context.Context, slotID string, now time.Time) error

	EnsureIndexes(ctx context.Context) error
}

// ReserveParams carries the fields ReserveSlot's compare-and-set needs to
// both the filter (SlotID, ExpectedVersion) and the write (everything
// else). Kept as a struct rather than a growing positional parameter list
// since §4.3 step 3 persists several request-supplied fields at once.
type ReserveParams struct {
	SlotID          string
	ExpectedVersion int
	PatientID       string
	BookingRef      string
	AppointmentType models.AppointmentType
	Notes           string
	SpecialReqs     []string
	Now             time.Time
}

type mongoRepo struct {
	templates *mongo.Collection
	slots     *mongo.Collection
	client    *mongo.Client
}

// New constructs a MongoDB-backed Repository against db's "availabilityTemplates"
// and "slots" collections.
func New(db *mongo.Database) Repository {
	return &mongoRepo{
		templates: db.Collection("availabilityTemplates"),
		slots:     db.Collection("slots"),
		client:    db.Client(),
	}
}
