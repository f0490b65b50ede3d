package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/discount"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type roster map[string]model.Worker

func (r roster) Lookup(id string) (model.Worker, bool) {
	w, ok := r[id]
	return w, ok
}

func validRequest() Request {
	return Request{
		Name:          " Ana ",
		Email:         "ana@example.com",
		Reason:        "Corte",
		PreferredDate: "2024-05-01",
		PreferredTime: "10:30",
		WorkerID:      "w1",
	}
}

func newService(store kv.Store) (*Service, *storage.AppointmentRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := storage.NewAppointmentRepository(store, logger)
	svc := NewService(repo, roster{"w1": {ID: "w1", Name: "Carla", Fee: "40.00"}}, logger)
	svc.now = func() time.Time { return time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string { n++; return "appt-" + string(rune('0'+n)) }
	return svc, repo
}

func TestCreate_Pending(t *testing.T) {
	svc, repo := newService(kv.NewMemoryStore())
	got, err := svc.Create(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "appt-1" || got.Status != model.StatusPending || got.UserName != "Ana" || got.AssignedWorker != "w1" || got.CreatedAt == nil {
		t.Fatalf("unexpected appointment %#v", got)
	}
	if got.ConfirmedAt != nil || got.DiscountApplied {
		t.Fatal("new booking must carry no audit or discount fields")
	}
	appts, _ := repo.Load(context.Background())
	if len(appts) != 1 {
		t.Fatalf("expected one stored appointment, got %d", len(appts))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(kv.NewMemoryStore())
	cases := map[string]func(*Request){
		"missing name": func(r *Request) { r.Name = "  " },
		"bad email":    func(r *Request) { r.Email = "ana" },
		"bad date":     func(r *Request) { r.PreferredDate = "01/05/2024" },
		"bad time":     func(r *Request) { r.PreferredTime = "25:00" },
	}
	for name, mutate := range cases {
		req := validRequest()
		mutate(&req)
		if _, err := svc.Create(context.Background(), req, nil); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}

	req := validRequest()
	req.WorkerID = "w9"
	if _, err := svc.Create(context.Background(), req, nil); !errors.Is(err, ErrUnknownWorker) {
		t.Fatalf("expected ErrUnknownWorker, got %v", err)
	}
}

func TestCreate_RedeemsDiscountOnce(t *testing.T) {
	store := kv.NewMemoryStore()
	svc, repo := newService(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := discount.NewEngine(repo, storage.NewGrantRepository(store, logger), notify.Discard{}, logger, discount.Config{})
	ctx := context.Background()

	if granted, err := engine.EvaluateAndGrant(ctx, discount.Client{Name: "Ana", Email: "ana@example.com"}); err != nil || !granted {
		t.Fatalf("expected grant, got %v (%v)", granted, err)
	}

	first, err := svc.Create(ctx, validRequest(), engine)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.DiscountApplied || first.DiscountPercentage != 30 || first.OriginalPrice != "40.00" || first.DiscountedPrice != "$28.00" {
		t.Fatalf("discount not stamped: %#v", first)
	}

	second, err := svc.Create(ctx, validRequest(), engine)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.DiscountApplied {
		t.Fatal("second booking must not receive the discount")
	}
}
