package dashboard

import (
	"context"
	"log/slog"
	"time"
)

const DefaultPollInterval = 30 * time.Second

// Poller runs a task immediately and then on every tick until ctx ends or the
// task fails. It never tries to detect conflicting writes; it only lets a
// view converge with whatever other actors stored.
type Poller struct {
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, logger: logger}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) Run(ctx context.Context, task func(context.Context) error) error {
	if err := task(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poller stopped", "err", ctx.Err())
			return nil
		case <-ticker.C:
			if err := task(ctx); err != nil {
				return err
			}
		}
	}
}

// Watch pushes a freshly derived view to emit on every poll.
func (d *Dashboard) Watch(ctx context.Context, p *Poller, workerID string, emit func(View) error) error {
	return p.Run(ctx, func(ctx context.Context) error {
		v, err := d.View(ctx, workerID)
		if err != nil {
			return err
		}
		return emit(v)
	})
}
