// Package booking creates pending appointments.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var (
	ErrInvalidRequest = errors.New("invalid booking request")
	ErrUnknownWorker  = errors.New("unknown worker")
)

type Request struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Reason        string `json:"reason"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	WorkerID      string `json:"worker_id"`
}

type Repository interface {
	Load(ctx context.Context) ([]model.Appointment, error)
	Save(ctx context.Context, appts []model.Appointment) error
}

type Directory interface {
	Lookup(id string) (model.Worker, bool)
}

// Redeemer consumes an available discount into the draft.
type Redeemer interface {
	Redeem(ctx context.Context, draft *model.Appointment) (bool, error)
}

type Service struct {
	repo    Repository
	workers Directory
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(repo Repository, workers Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		workers: workers,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func (r *Request) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Reason = strings.TrimSpace(r.Reason)
	r.PreferredDate = strings.TrimSpace(r.PreferredDate)
	r.PreferredTime = strings.TrimSpace(r.PreferredTime)
	r.WorkerID = strings.TrimSpace(r.WorkerID)

	if r.Name == "" || r.Email == "" || r.Reason == "" || r.PreferredDate == "" || r.PreferredTime == "" {
		return fmt.Errorf("%w: name, email, reason, preferred_date and preferred_time are required", ErrInvalidRequest)
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidRequest)
	}
	if _, err := time.Parse("2006-01-02", r.PreferredDate); err != nil {
		return fmt.Errorf("%w: preferred_date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	if _, err := time.Parse("15:04", r.PreferredTime); err != nil {
		return fmt.Errorf("%w: preferred_time must be HH:MM", ErrInvalidRequest)
	}
	return nil
}

// Create appends a pending appointment to the collection. When redeemer is not
// nil an available discount is consumed into it; at most one redemption
// happens per call.
func (s *Service) Create(ctx context.Context, req Request, redeemer Redeemer) (model.Appointment, error) {
	if err := req.normalize(); err != nil {
		return model.Appointment{}, err
	}

	now := s.now()
	draft := model.Appointment{
		ID:            s.newID(),
		Status:        model.StatusPending,
		UserName:      req.Name,
		UserEmail:     req.Email,
		UserPhone:     req.Phone,
		Reason:        req.Reason,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		CreatedAt:     &now,
	}
	if req.WorkerID != "" {
		w, ok := s.workers.Lookup(req.WorkerID)
		if !ok {
			return model.Appointment{}, fmt.Errorf("%w: %s", ErrUnknownWorker, req.WorkerID)
		}
		draft.AssignedWorker = w.ID
		draft.OriginalPrice = w.Fee
	}

	appts, err := s.repo.Load(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	if redeemer != nil {
		if _, err := redeemer.Redeem(ctx, &draft); err != nil {
			return model.Appointment{}, err
		}
	}
	appts = append(appts, draft)
	if err := s.repo.Save(ctx, appts); err != nil {
		return model.Appointment{}, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", draft.ID,
		"assigned_worker", draft.AssignedWorker,
		"discount_applied", draft.DiscountApplied,
	)
	return draft, nil
}
