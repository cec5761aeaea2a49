// Package notify dispatches booking-lifecycle notifications asynchronously,
// grounded on the teacher's services/tasks/reminder.go +
// cron/worker.go asynq pair. Delivery channels (push/email/SMS) are out of
// scope; the worker logs the dispatch the way the teacher's reminder
// handler logs a send it has no live provider credentials for.
package notify

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TypeAppointmentBooked is the asynq task type for a new booking.
const TypeAppointmentBooked = "appointment:booked"

// TypeAppointmentCancelled is the asynq task type for a cancellation.
const TypeAppointmentCancelled = "appointment:cancelled"

// AppointmentPayload carries the fields the notification handler needs to
// address and describe a booking-lifecycle event.
type AppointmentPayload struct {
	SlotID           string `json:"slotId"`
	PatientID        string `json:"patientId"`
	ProviderID       string `json:"providerId"`
	BookingReference string `json:"bookingReference"`
	StartUTC         string `json:"startUtc"`
}

// Dispatcher enqueues booking-lifecycle tasks onto the asynq queue.
type Dispatcher struct {
	client *asynq.Client
}

// NewDispatcher constructs a Dispatcher against the given Redis connection
// options (expected to be bound to the asynq-dedicated Redis DB, per the
// teacher's per-concern Redis-DB split).
func NewDispatcher(redisOpt asynq.RedisClientOpt) *Dispatcher {
	return &Dispatcher{client: asynq.NewClient(redisOpt)}
}

func (d *Dispatcher) Close() error { return d.client.Close() }

// NotifyBooked enqueues an appointment-booked task for immediate delivery.
func (d *Dispatcher) NotifyBooked(p AppointmentPayload) error {
	return d.enqueue(TypeAppointmentBooked, p)
}

// NotifyCancelled enqueues an appointment-cancelled task for immediate delivery.
func (d *Dispatcher) NotifyCancelled(p AppointmentPayload) error {
	return d.enqueue(TypeAppointmentCancelled, p)
}

func (d *Dispatcher) enqueue(taskType string, p AppointmentPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, b)
	_, err = d.client.Enqueue(task, asynq.ProcessIn(0), asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	return err
}
