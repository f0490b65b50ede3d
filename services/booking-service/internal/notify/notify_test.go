package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
)

func TestNew_DismissAfter(t *testing.T) {
	n := New("hola", SeverityInfo)
	if n.DismissAfterMs != 4000 {
		t.Fatalf("expected 4000ms, got %d", n.DismissAfterMs)
	}
}

func TestMulti_SkipsNilAndFansOut(t *testing.T) {
	var logs bytes.Buffer
	sink := &events.MemorySink{}
	m := Multi{nil, NewLogNotifier(slog.New(slog.NewJSONHandler(&logs, nil))), NewKafkaNotifier(sink, slog.New(slog.NewTextHandler(io.Discard, nil)))}

	n := New("Cita confirmada", SeveritySuccess)
	n.Audience = "ana@example.com"
	m.Notify(context.Background(), n)

	if !strings.Contains(logs.String(), "Cita confirmada") {
		t.Fatalf("log notifier not called: %s", logs.String())
	}
	got := sink.Events()
	if len(got) != 1 || got[0].Type != EventType || got[0].Key != "ana@example.com" {
		t.Fatalf("unexpected events %+v", got)
	}
	var decoded Notification
	if err := json.Unmarshal(got[0].Payload, &decoded); err != nil || decoded.Message != "Cita confirmada" {
		t.Fatalf("bad payload %s (%v)", got[0].Payload, err)
	}
}
