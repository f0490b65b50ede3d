package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const AppointmentCompletedType = "salonbook.appointment.completed.v1"

// CompletionObserver announces completed appointments so downstream metrics
// can refresh.
type CompletionObserver struct {
	sink   Sink
	logger *slog.Logger
}

func NewCompletionObserver(sink Sink, logger *slog.Logger) *CompletionObserver {
	return &CompletionObserver{sink: sink, logger: logger}
}

type completedPayload struct {
	AppointmentID  string    `json:"appointment_id"`
	AssignedWorker string    `json:"assigned_worker,omitempty"`
	CompletedBy    string    `json:"completed_by"`
	CompletedAt    time.Time `json:"completed_at"`
	DiscountUsed   bool      `json:"discount_used"`
}

func (o *CompletionObserver) AppointmentCompleted(ctx context.Context, appt model.Appointment) {
	p := completedPayload{
		AppointmentID:  appt.ID,
		AssignedWorker: appt.AssignedWorker,
		CompletedBy:    appt.CompletedBy,
		DiscountUsed:   appt.DiscountApplied,
	}
	if appt.CompletedAt != nil {
		p.CompletedAt = *appt.CompletedAt
	}
	payload, err := json.Marshal(p)
	if err != nil {
		o.logger.Error("completion event encode failed", "err", err)
		return
	}
	if err := o.sink.Publish(ctx, Event{Type: AppointmentCompletedType, Key: appt.ID, Payload: payload}); err != nil {
		o.logger.Warn("completion event publish failed", "appointment_id", appt.ID, "err", err)
	}
}
