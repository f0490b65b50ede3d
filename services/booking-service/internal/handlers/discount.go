package handlers

import (
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/discount"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

// Discounts binds the engine to the grant of the calling installation.
type Discounts struct {
	engine *discount.Engine
	grants *storage.GrantRepository
}

func NewDiscounts(engine *discount.Engine, grants *storage.GrantRepository) *Discounts {
	return &Discounts{engine: engine, grants: grants}
}

func (d *Discounts) For(r *http.Request) *discount.Engine {
	return d.engine.WithGrants(d.grants.ForInstallation(session.Installation(r)))
}

type DiscountHandler struct {
	discounts *Discounts
	resolver  *session.Resolver
	logger    *slog.Logger
}

func NewDiscountHandler(discounts *Discounts, resolver *session.Resolver, logger *slog.Logger) *DiscountHandler {
	return &DiscountHandler{discounts: discounts, resolver: resolver, logger: logger}
}

type discountStatusResponse struct {
	NewClient  bool `json:"new_client"`
	Available  bool `json:"available"`
	Granted    bool `json:"granted,omitempty"`
	Percentage int  `json:"percentage"`
}

func (h *DiscountHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	engine := h.discounts.For(r)
	c := h.resolver.Client(r)
	isNew, err := engine.IsNewClient(r.Context(), discount.Client{Name: c.Name, Email: c.Email})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	available, err := engine.HasAvailableDiscount(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, discountStatusResponse{NewClient: isNew, Available: available, Percentage: engine.Percentage()})
}

// Evaluate is called on page load; it grants the welcome discount to a new
// client and is a no-op otherwise.
func (h *DiscountHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	c := h.resolver.Client(r)
	if c.Name == "" && c.Email == "" {
		writeJSON(w, http.StatusUnauthorized, redirectResponse{Redirect: loginPath})
		return
	}
	engine := h.discounts.For(r)
	granted, err := engine.EvaluateAndGrant(r.Context(), discount.Client{Name: c.Name, Email: c.Email})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	available, err := engine.HasAvailableDiscount(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, discountStatusResponse{Granted: granted, Available: available, Percentage: engine.Percentage()})
}
