package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type roster map[string]model.Worker

func (r roster) Lookup(id string) (model.Worker, bool) {
	w, ok := r[id]
	return w, ok
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDashboard(t *testing.T, appts []model.Appointment) (*Dashboard, *storage.AppointmentRepository) {
	t.Helper()
	repo := storage.NewAppointmentRepository(kv.NewMemoryStore(), discard())
	if err := repo.Save(context.Background(), appts); err != nil {
		t.Fatalf("seed: %v", err)
	}
	machine := lifecycle.NewMachine(repo, discard())
	workers := roster{"w1": {ID: "w1", Name: "Carla"}, "w2": {ID: "w2", Name: "Diego"}}
	return New(repo, machine, workers, discard()), repo
}

func TestComputeStats_ExcludesCancelled(t *testing.T) {
	appts := []model.Appointment{
		{ID: "1", AssignedWorker: "w1", Status: model.StatusPending},
		{ID: "2", AssignedWorker: "w1", Status: model.StatusConfirmed},
		{ID: "3", AssignedWorker: "w1", Status: model.StatusCompleted},
		{ID: "4", AssignedWorker: "w1", Status: model.StatusCancelled},
		{ID: "5", AssignedWorker: "w2", Status: model.StatusPending},
		{ID: "6", Status: model.StatusPending},
	}
	got := ComputeStats(appts, "w1")
	want := Stats{Total: 3, Pending: 1, Confirmed: 1, Completed: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestList_SortedByEffectiveDateStable(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a", AssignedWorker: "w1", PreferredDate: "2024-05-01", PreferredTime: "09:00"},
		{ID: "b", AssignedWorker: "w1", DateTime: "2024-05-03T10:00"},
		{ID: "c", AssignedWorker: "w2", DateTime: "2024-06-01T10:00"},
		{ID: "d", AssignedWorker: "w1", PreferredDate: "2024-05-01", PreferredTime: "09:00"},
		{ID: "e", AssignedWorker: "w1"},
	}
	got := List(appts, "w1")
	want := []string{"b", "a", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i].ID)
		}
	}
}

func TestView_RedirectWithoutIdentity(t *testing.T) {
	d, _ := newDashboard(t, nil)
	if _, err := d.View(context.Background(), ""); !errors.Is(err, ErrRedirectToLogin) {
		t.Fatalf("expected redirect, got %v", err)
	}
	if _, err := d.View(context.Background(), "ghost"); !errors.Is(err, ErrRedirectToLogin) {
		t.Fatalf("unknown worker should redirect, got %v", err)
	}
}

func TestConfirmAppointment_RecomputesView(t *testing.T) {
	d, _ := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w1", Status: model.StatusPending}})
	v, err := d.ConfirmAppointment(context.Background(), "w1", "1", Answers{Confirmed: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if v.Stats.Pending != 0 || v.Stats.Confirmed != 1 || v.WorkerName != "Carla" {
		t.Fatalf("view not re-derived: %+v", v)
	}
}

func TestDeclinedGateAborts(t *testing.T) {
	d, repo := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w1", Status: model.StatusPending}})
	ctx := context.Background()

	if _, err := d.ConfirmAppointment(ctx, "w1", "1", Answers{Confirmed: false}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	v, err := d.CancelAppointment(ctx, "w1", "1", Answers{Confirmed: true, Reason: nil})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("declined reason prompt must abort, got %v", err)
	}
	if v.Stats.Pending != 1 {
		t.Fatalf("aborted action should return the unchanged view, got %+v", v.Stats)
	}
	appts, _ := repo.Load(ctx)
	if appts[0].Status != model.StatusPending {
		t.Fatalf("no mutation expected, got %s", appts[0].Status)
	}
}

func TestCancelAppointment_EmptyReasonUsesDefault(t *testing.T) {
	d, repo := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w1", Status: model.StatusConfirmed}})
	empty := ""
	v, err := d.CancelAppointment(context.Background(), "w1", "1", Answers{Confirmed: true, Reason: &empty})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if v.Stats.Total != 0 {
		t.Fatalf("cancelled appointment must leave the totals, got %+v", v.Stats)
	}
	appts, _ := repo.Load(context.Background())
	if appts[0].CancellationReason != lifecycle.DefaultCancellationReason || appts[0].CancelledBy != "w1" {
		t.Fatalf("unexpected record %#v", appts[0])
	}
}

func TestMutationScopedToAssignedWorker(t *testing.T) {
	d, repo := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w2", Status: model.StatusPending}})
	ctx := context.Background()
	if _, err := d.ConfirmAppointment(ctx, "w1", "1", Answers{Confirmed: true}); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
	if _, err := d.CompleteAppointment(ctx, "w1", "missing", Answers{Confirmed: true}); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	appts, _ := repo.Load(ctx)
	if appts[0].Status != model.StatusPending {
		t.Fatal("foreign appointment must not change")
	}
}

func TestCompleteAppointment_IllegalFromPending(t *testing.T) {
	d, _ := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w1", Status: model.StatusPending}})
	if _, err := d.CompleteAppointment(context.Background(), "w1", "1", Answers{Confirmed: true}); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	p := NewPoller(5*time.Millisecond, discard())

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, func(context.Context) error {
			if calls.Add(1) == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", calls.Load())
	}
}

func TestPoller_DefaultInterval(t *testing.T) {
	if got := NewPoller(0, discard()).Interval(); got != DefaultPollInterval {
		t.Fatalf("expected %s, got %s", DefaultPollInterval, got)
	}
}

func TestWatch_SeesExternalWrites(t *testing.T) {
	d, repo := newDashboard(t, []model.Appointment{{ID: "1", AssignedWorker: "w1", Status: model.StatusPending}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var views []View
	err := d.Watch(ctx, NewPoller(5*time.Millisecond, discard()), "w1", func(v View) error {
		views = append(views, v)
		if len(views) == 1 {
			// another actor writes directly to the shared store
			_ = repo.Save(ctx, []model.Appointment{
				{ID: "1", AssignedWorker: "w1", Status: model.StatusPending},
				{ID: "2", AssignedWorker: "w1", Status: model.StatusPending},
			})
		}
		if len(views) == 2 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if views[0].Stats.Pending != 1 || views[1].Stats.Pending != 2 {
		t.Fatalf("expected convergence 1 -> 2, got %d -> %d", views[0].Stats.Pending, views[1].Stats.Pending)
	}
}
