// Package maintenance copies the live appointments value aside on a schedule.
// It only ever writes backup keys.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "0 3 * * *"

func BackupKey(day time.Time) string {
	return storage.AppointmentsKey + ":backup:" + day.UTC().Format("2006-01-02")
}

type Snapshotter struct {
	store  kv.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewSnapshotter(store kv.Store, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{store: store, logger: logger, now: time.Now}
}

// Snapshot copies the raw appointments value to today's backup key. It
// returns "" when there is nothing to copy.
func (s *Snapshotter) Snapshot(ctx context.Context) (string, error) {
	raw, err := s.store.Get(ctx, storage.AppointmentsKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read appointments: %w", err)
	}
	key := BackupKey(s.now())
	if err := s.store.Set(ctx, key, raw); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

// Run schedules Snapshot with a standard five-field cron spec until ctx ends.
func (s *Snapshotter) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		key, err := s.Snapshot(ctx)
		if err != nil {
			s.logger.Error("appointments snapshot failed", "err", err)
			return
		}
		if key != "" {
			s.logger.Info("appointments snapshot written", "key", key)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", spec, err)
	}

	c.Start()
	s.logger.Info("maintenance scheduler started", "schedule", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
