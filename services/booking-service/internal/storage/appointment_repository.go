package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/kv"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const AppointmentsKey = "appointments"

// ErrMalformedStore describes an unparsable stored value. Load recovers from it
// locally and never returns it.
var ErrMalformedStore = errors.New("malformed store value")

// AppointmentRepository persists the whole appointment collection under one
// key. Save is a total replacement; there is no merge and no version check.
type AppointmentRepository struct {
	store  kv.Store
	logger *slog.Logger
}

func NewAppointmentRepository(store kv.Store, logger *slog.Logger) *AppointmentRepository {
	return &AppointmentRepository{store: store, logger: logger}
}

// Load returns the stored collection in stored order. A missing or malformed
// value yields an empty collection; only backend failures are returned.
func (r *AppointmentRepository) Load(ctx context.Context) ([]model.Appointment, error) {
	raw, err := r.store.Get(ctx, AppointmentsKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.Appointment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	appts, dropped, err := decodeAppointments(raw)
	if err != nil {
		r.logger.Warn("appointments store unreadable; using empty collection", "err", err)
		return []model.Appointment{}, nil
	}
	if dropped > 0 {
		r.logger.Warn("dropped invalid appointment records", "count", dropped)
	}
	return appts, nil
}

func (r *AppointmentRepository) Save(ctx context.Context, appts []model.Appointment) error {
	if appts == nil {
		appts = []model.Appointment{}
	}
	raw, err := json.Marshal(appts)
	if err != nil {
		return fmt.Errorf("encode appointments: %w", err)
	}
	if err := r.store.Set(ctx, AppointmentsKey, string(raw)); err != nil {
		return fmt.Errorf("save appointments: %w", err)
	}
	return nil
}

// decodeAppointments validates each element on its own so one bad record does
// not discard the rest. Records without an id or with an unknown status are
// dropped; a missing status is read as pending.
func decodeAppointments(raw string) ([]model.Appointment, int, error) {
	if strings.TrimSpace(raw) == "" {
		return []model.Appointment{}, 0, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedStore, err)
	}

	appts := make([]model.Appointment, 0, len(elems))
	dropped := 0
	for _, e := range elems {
		var a model.Appointment
		if err := json.Unmarshal(e, &a); err != nil {
			dropped++
			continue
		}
		if strings.TrimSpace(a.ID) == "" {
			dropped++
			continue
		}
		if a.Status == "" {
			a.Status = model.StatusPending
		}
		if !a.Status.Valid() {
			dropped++
			continue
		}
		appts = append(appts, a)
	}
	return appts, dropped, nil
}
