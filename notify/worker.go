package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker runs the asynq server consuming booking-lifecycle tasks, grounded
// on the teacher's cron/worker.go InitReminderWorker.
type Worker struct {
	srv    *asynq.Server
	logger *zap.Logger
}

// NewWorker constructs a Worker bound to the same Redis connection options
// the Dispatcher publishes to.
func NewWorker(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})
	return &Worker{srv: srv, logger: logger}
}

// Run starts the worker; it blocks until the server stops.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentBooked, w.handle("booked"))
	mux.HandleFunc(TypeAppointmentCancelled, w.handle("cancelled"))
	return w.srv.Run(mux)
}

func (w *Worker) Shutdown() { w.srv.Shutdown() }

func (w *Worker) handle(event string) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p AppointmentPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal appointment payload: %w", err)
		}
		w.logger.Info("appointment notification dispatched",
			zap.String("event", event),
			zap.String("slotId", p.SlotID),
			zap.String("patientId", p.PatientID),
			zap.String("providerId", p.ProviderID),
			zap.String("bookingReference", p.BookingReference),
		)
		return nil
	}
}
