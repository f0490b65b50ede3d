package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := NewSnapshotter(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }

	key, err := s.Snapshot(ctx)
	if err != nil || key != "" {
		t.Fatalf("empty store should skip, got %q (%v)", key, err)
	}

	_ = store.Set(ctx, storage.AppointmentsKey, `[{"id":"a1","status":"pending"}]`)
	key, err = s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if key != "appointments:backup:2024-05-01" {
		t.Fatalf("unexpected key %q", key)
	}
	backup, _ := store.Get(ctx, key)
	live, _ := store.Get(ctx, storage.AppointmentsKey)
	if backup != live {
		t.Fatalf("backup differs from live value")
	}
}

func TestRun_RejectsBadSchedule(t *testing.T) {
	s := NewSnapshotter(kv.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := s.Run(context.Background(), "not a schedule"); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestRun_StopsWithContext(t *testing.T) {
	s := NewSnapshotter(kv.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, DefaultSchedule) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
