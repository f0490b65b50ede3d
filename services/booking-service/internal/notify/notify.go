// Package notify delivers fire-and-forget user notices. Nothing a caller does
// depends on delivery succeeding.
package notify

import (
	"context"
	"log/slog"
	"time"

	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DismissAfter is how long a notice stays on screen.
const DismissAfter = 4 * time.Second

type Notification struct {
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	DismissAfterMs int64    `json:"dismiss_after_ms"`
	// Audience is the client or worker the notice is meant for, if known.
	Audience string    `json:"audience,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

func New(message string, severity Severity) Notification {
	return Notification{
		Message:        message,
		Severity:       severity,
		DismissAfterMs: DismissAfter.Milliseconds(),
		SentAt:         time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	l.logger.Info("notification",
		"message", n.Message,
		"severity", n.Severity,
		"audience", n.Audience,
		"dismiss_after_ms", n.DismissAfterMs,
		"traceparent", otelx.TraceParent(ctx),
	)
}

// Multi delivers to every notifier in order. Nil entries are skipped.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}
