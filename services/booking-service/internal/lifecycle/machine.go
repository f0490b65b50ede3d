// Package lifecycle applies appointment status transitions. Every operation
// reads the whole collection, mutates one record and writes the whole
// collection back.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrIllegalTransition = errors.New("illegal status transition")
)

const DefaultCancellationReason = "No reason provided"

var transitions = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// CanTransition reports whether from -> to is in the legality table.
func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Repository interface {
	Load(ctx context.Context) ([]model.Appointment, error)
	Save(ctx context.Context, appts []model.Appointment) error
}

// CompletionObserver is told about every appointment that reached completed.
// Implementations must not block.
type CompletionObserver interface {
	AppointmentCompleted(ctx context.Context, appt model.Appointment)
}

// Observers fans one completion out to several observers.
type Observers []CompletionObserver

func (o Observers) AppointmentCompleted(ctx context.Context, appt model.Appointment) {
	for _, x := range o {
		if x != nil {
			x.AppointmentCompleted(ctx, appt)
		}
	}
}

// TransitionRecorder counts applied transitions.
type TransitionRecorder interface {
	RecordTransition(to model.Status)
}

type Machine struct {
	repo     Repository
	logger   *slog.Logger
	now      func() time.Time
	observer CompletionObserver
	recorder TransitionRecorder
	tracer   trace.Tracer
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithCompletionObserver(o CompletionObserver) Option {
	return func(m *Machine) { m.observer = o }
}

func WithTransitionRecorder(r TransitionRecorder) Option {
	return func(m *Machine) { m.recorder = r }
}

func NewMachine(repo Repository, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		tracer: otel.Tracer("salonbook/lifecycle"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) Confirm(ctx context.Context, id, workerID string) (model.Appointment, error) {
	return m.apply(ctx, id, model.StatusConfirmed, func(a *model.Appointment, at time.Time) {
		a.ConfirmedBy = workerID
		a.ConfirmedAt = &at
	})
}

func (m *Machine) Complete(ctx context.Context, id, workerID string) (model.Appointment, error) {
	appt, err := m.apply(ctx, id, model.StatusCompleted, func(a *model.Appointment, at time.Time) {
		a.CompletedBy = workerID
		a.CompletedAt = &at
	})
	if err != nil {
		return appt, err
	}
	if m.observer != nil {
		m.observer.AppointmentCompleted(ctx, appt)
	}
	return appt, nil
}

// Cancel accepts pending or confirmed appointments. A blank reason is stored
// as DefaultCancellationReason.
func (m *Machine) Cancel(ctx context.Context, id, actorID, reason string) (model.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancellationReason
	}
	return m.apply(ctx, id, model.StatusCancelled, func(a *model.Appointment, at time.Time) {
		a.CancelledBy = actorID
		a.CancelledAt = &at
		a.CancellationReason = reason
	})
}

// AttachAdminMessage sets the staff note regardless of status and never
// changes the status itself.
func (m *Machine) AttachAdminMessage(ctx context.Context, id, message string) (model.Appointment, error) {
	ctx, span := m.tracer.Start(ctx, "appointment.admin_message",
		trace.WithAttributes(attribute.String("appointment.id", id)))
	defer span.End()

	appts, err := m.repo.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return model.Appointment{}, err
	}
	i := indexOf(appts, id)
	if i < 0 {
		return model.Appointment{}, ErrNotFound
	}
	appts[i].AdminMessage = strings.TrimSpace(message)
	if err := m.repo.Save(ctx, appts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return model.Appointment{}, err
	}
	m.logger.Info("admin message attached", "appointment_id", id, "status", appts[i].Status)
	return appts[i], nil
}

func (m *Machine) apply(ctx context.Context, id string, to model.Status, stamp func(*model.Appointment, time.Time)) (model.Appointment, error) {
	ctx, span := m.tracer.Start(ctx, "appointment."+string(to),
		trace.WithAttributes(
			attribute.String("appointment.id", id),
			attribute.String("appointment.status", string(to)),
		))
	defer span.End()

	appts, err := m.repo.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return model.Appointment{}, err
	}
	i := indexOf(appts, id)
	if i < 0 {
		span.SetStatus(codes.Error, "not found")
		return model.Appointment{}, ErrNotFound
	}

	from := appts[i].Status
	if !CanTransition(from, to) {
		span.SetStatus(codes.Error, "illegal transition")
		m.logger.Warn("rejected status transition", "appointment_id", id, "from", from, "to", to)
		return appts[i], fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	appts[i].Status = to
	stamp(&appts[i], m.now())
	if err := m.repo.Save(ctx, appts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return model.Appointment{}, err
	}
	if m.recorder != nil {
		m.recorder.RecordTransition(to)
	}
	m.logger.Info("appointment transitioned", "appointment_id", id, "from", from, "to", to)
	return appts[i], nil
}

func indexOf(appts []model.Appointment, id string) int {
	for i := range appts {
		if appts[i].ID == id {
			return i
		}
	}
	return -1
}
