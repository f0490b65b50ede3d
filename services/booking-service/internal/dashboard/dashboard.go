package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var (
	ErrRedirectToLogin = errors.New("worker session required")
	ErrAborted         = errors.New("action declined by worker")
	ErrNotAssigned     = errors.New("appointment not assigned to worker")
)

type Loader interface {
	Load(ctx context.Context) ([]model.Appointment, error)
}

type Transitions interface {
	Confirm(ctx context.Context, id, workerID string) (model.Appointment, error)
	Complete(ctx context.Context, id, workerID string) (model.Appointment, error)
	Cancel(ctx context.Context, id, actorID, reason string) (model.Appointment, error)
}

// Directory resolves a worker id to the roster entry.
type Directory interface {
	Lookup(id string) (model.Worker, bool)
}

type Dashboard struct {
	repo      Loader
	machine   Transitions
	directory Directory
	logger    *slog.Logger
}

func New(repo Loader, machine Transitions, directory Directory, logger *slog.Logger) *Dashboard {
	return &Dashboard{repo: repo, machine: machine, directory: directory, logger: logger}
}

func (d *Dashboard) resolve(workerID string) (model.Worker, error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return model.Worker{}, ErrRedirectToLogin
	}
	if d.directory == nil {
		return model.Worker{ID: workerID}, nil
	}
	w, ok := d.directory.Lookup(workerID)
	if !ok {
		return model.Worker{}, ErrRedirectToLogin
	}
	return w, nil
}

// View re-derives stats and list from the current store contents.
func (d *Dashboard) View(ctx context.Context, workerID string) (View, error) {
	w, err := d.resolve(workerID)
	if err != nil {
		return View{}, err
	}
	appts, err := d.repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return derive(appts, w), nil
}

func (d *Dashboard) ConfirmAppointment(ctx context.Context, workerID, id string, gate Gate) (View, error) {
	return d.act(ctx, workerID, id, func(w model.Worker) error {
		if !gate.Confirm(ctx, "Confirm this appointment?") {
			return ErrAborted
		}
		_, err := d.machine.Confirm(ctx, id, w.ID)
		return err
	})
}

func (d *Dashboard) CompleteAppointment(ctx context.Context, workerID, id string, gate Gate) (View, error) {
	return d.act(ctx, workerID, id, func(w model.Worker) error {
		if !gate.Confirm(ctx, "Mark this appointment as completed?") {
			return ErrAborted
		}
		_, err := d.machine.Complete(ctx, id, w.ID)
		return err
	})
}

// CancelAppointment needs both the yes/no step and the reason prompt. An empty
// answer to the prompt still cancels, with the default reason.
func (d *Dashboard) CancelAppointment(ctx context.Context, workerID, id string, gate Gate) (View, error) {
	return d.act(ctx, workerID, id, func(w model.Worker) error {
		if !gate.Confirm(ctx, "Cancel this appointment?") {
			return ErrAborted
		}
		reason, ok := gate.Prompt(ctx, "Reason for cancelling (optional)")
		if !ok {
			return ErrAborted
		}
		_, err := d.machine.Cancel(ctx, id, w.ID, reason)
		return err
	})
}

// act checks identity and assignment, runs the action, and returns the view
// re-derived after it. On ErrAborted the returned view is the unchanged one.
func (d *Dashboard) act(ctx context.Context, workerID, id string, action func(model.Worker) error) (View, error) {
	w, err := d.resolve(workerID)
	if err != nil {
		return View{}, err
	}
	appts, err := d.repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	if err := checkAssigned(appts, id, w.ID); err != nil {
		return derive(appts, w), err
	}

	if err := action(w); err != nil {
		if errors.Is(err, ErrAborted) {
			d.logger.Info("worker declined action", "worker_id", w.ID, "appointment_id", id)
		}
		return derive(appts, w), err
	}

	fresh, err := d.repo.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return derive(fresh, w), nil
}

func checkAssigned(appts []model.Appointment, id, workerID string) error {
	for _, a := range appts {
		if a.ID != id {
			continue
		}
		if a.AssignedWorker != workerID {
			return ErrNotAssigned
		}
		return nil
	}
	return lifecycle.ErrNotFound
}
