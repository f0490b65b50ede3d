// Package discount runs the one-time new-client discount:
// no grant -> shown and unapplied -> applied. Applied is final.
package discount

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
)

const DefaultPercentage = 30

type Client struct {
	Name  string
	Email string
}

type Loader interface {
	Load(ctx context.Context) ([]model.Appointment, error)
}

type GrantStore interface {
	Load(ctx context.Context) (*model.Grant, error)
	Save(ctx context.Context, g model.Grant) error
}

// Recorder counts grant lifecycle events.
type Recorder interface {
	GrantIssued()
	DiscountRedeemed()
}

type Engine struct {
	appts      Loader
	grants     GrantStore
	notifier   notify.Notifier
	recorder   Recorder
	logger     *slog.Logger
	percentage int
	now        func() time.Time
}

type Config struct {
	Percentage int
	Now        func() time.Time
	Recorder   Recorder
}

func NewEngine(appts Loader, grants GrantStore, notifier notify.Notifier, logger *slog.Logger, cfg Config) *Engine {
	if cfg.Percentage <= 0 || cfg.Percentage >= 100 {
		cfg.Percentage = DefaultPercentage
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Engine{
		appts:      appts,
		grants:     grants,
		notifier:   notifier,
		recorder:   cfg.Recorder,
		logger:     logger,
		percentage: cfg.Percentage,
		now:        cfg.Now,
	}
}

// WithGrants returns a copy of the engine bound to another grant store.
func (e *Engine) WithGrants(g GrantStore) *Engine {
	c := *e
	c.grants = g
	return &c
}

func (e *Engine) Percentage() int {
	return e.percentage
}

// IsNewClient is true when no appointment matches the client's email or name
// and no grant has ever been shown.
func IsNewClient(appts []model.Appointment, c Client, g *model.Grant) bool {
	if g != nil && g.Shown {
		return false
	}
	name := strings.TrimSpace(c.Name)
	email := strings.ToLower(strings.TrimSpace(c.Email))
	for _, a := range appts {
		if email != "" && strings.ToLower(strings.TrimSpace(a.UserEmail)) == email {
			return false
		}
		if name != "" && strings.TrimSpace(a.UserName) == name {
			return false
		}
	}
	return true
}

func (e *Engine) IsNewClient(ctx context.Context, c Client) (bool, error) {
	appts, err := e.appts.Load(ctx)
	if err != nil {
		return false, err
	}
	g, err := e.grants.Load(ctx)
	if err != nil {
		return false, err
	}
	return IsNewClient(appts, c, g), nil
}

// EvaluateAndGrant writes a fresh grant and sends the welcome notice when the
// client is new. It reports whether a grant was written.
func (e *Engine) EvaluateAndGrant(ctx context.Context, c Client) (bool, error) {
	isNew, err := e.IsNewClient(ctx, c)
	if err != nil || !isNew {
		return false, err
	}

	at := e.now()
	g := model.Grant{
		Percentage: e.percentage,
		Shown:      true,
		Available:  true,
		Applied:    false,
		GrantedAt:  &at,
	}
	if err := e.grants.Save(ctx, g); err != nil {
		return false, err
	}
	if e.recorder != nil {
		e.recorder.GrantIssued()
	}
	e.logger.Info("new client discount granted", "client", c.Name, "percentage", g.Percentage)

	n := notify.New(fmt.Sprintf("¡Bienvenido! Tienes un %d%% de descuento en tu primera cita.", g.Percentage), notify.SeveritySuccess)
	n.Audience = c.Name
	e.notifier.Notify(ctx, n)
	return true, nil
}

// Available returns the redeemable grant, or nil.
func (e *Engine) Available(ctx context.Context) (*model.Grant, error) {
	g, err := e.grants.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !g.Redeemable() {
		return nil, nil
	}
	return g, nil
}

func (e *Engine) HasAvailableDiscount(ctx context.Context) (bool, error) {
	g, err := e.Available(ctx)
	return g != nil, err
}

// Redeem consumes the grant and stamps the draft. Once redeemed it keeps
// returning false until a new grant exists.
func (e *Engine) Redeem(ctx context.Context, draft *model.Appointment) (bool, error) {
	g, err := e.Available(ctx)
	if err != nil || g == nil {
		return false, err
	}

	g.Applied = true
	g.Available = false
	if err := e.grants.Save(ctx, *g); err != nil {
		return false, err
	}
	if e.recorder != nil {
		e.recorder.DiscountRedeemed()
	}

	draft.DiscountApplied = true
	draft.DiscountPercentage = g.Percentage
	if draft.OriginalPrice != "" {
		if price, err := ApplyPercentage(draft.OriginalPrice, g.Percentage); err == nil {
			draft.DiscountedPrice = price
		} else {
			e.logger.Warn("original price not numeric; discounted price left blank", "price", draft.OriginalPrice, "err", err)
		}
	}
	return true, nil
}
