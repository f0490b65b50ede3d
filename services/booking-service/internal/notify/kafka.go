package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
)

const EventType = "salonbook.notification.v1"

// KafkaNotifier hands notices to whatever front end consumes the notify topic.
type KafkaNotifier struct {
	publisher events.Sink
	logger    *slog.Logger
}

func NewKafkaNotifier(publisher events.Sink, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, logger: logger}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		k.logger.Error("notification encode failed", "err", err)
		return
	}
	key := n.Audience
	if key == "" {
		key = string(n.Severity)
	}
	if err := k.publisher.Publish(ctx, events.Event{Type: EventType, Key: key, Payload: payload}); err != nil {
		k.logger.Warn("notification publish failed", "err", err)
	}
}
