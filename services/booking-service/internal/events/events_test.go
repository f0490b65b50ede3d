package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func TestNewPublisher_DisabledWithoutBrokers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if p := NewPublisher(Config{Brokers: " , ", Topic: "x"}, logger); p != nil {
		t.Fatal("expected nil publisher without brokers")
	}
	if p := NewPublisher(Config{Brokers: "kafka:9092"}, logger); p != nil {
		t.Fatal("expected nil publisher without topic")
	}
}

func TestCompletionObserver_Publishes(t *testing.T) {
	sink := &MemorySink{}
	obs := NewCompletionObserver(sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	obs.AppointmentCompleted(context.Background(), model.Appointment{ID: "a1", AssignedWorker: "w1", CompletedBy: "w1", CompletedAt: &at})

	got := sink.Events()
	if len(got) != 1 || got[0].Type != AppointmentCompletedType || got[0].Key != "a1" {
		t.Fatalf("unexpected events %#v", got)
	}
	var p completedPayload
	if err := json.Unmarshal(got[0].Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.CompletedBy != "w1" || !p.CompletedAt.Equal(at) {
		t.Fatalf("unexpected payload %+v", p)
	}
}
