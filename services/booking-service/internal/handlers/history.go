package handlers

import (
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/history"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type HistoryHandler struct {
	repo     *storage.AppointmentRepository
	resolver *session.Resolver
	logger   *slog.Logger
}

func NewHistoryHandler(repo *storage.AppointmentRepository, resolver *session.Resolver, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, resolver: resolver, logger: logger}
}

// List serves the client's history. status accepts a canonical status or its
// display label; date is YYYY-MM-DD.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	client := h.resolver.Client(r)
	if client.Name == "" {
		writeJSON(w, http.StatusUnauthorized, redirectResponse{Redirect: loginPath})
		return
	}
	q := r.URL.Query()
	filter := history.Filter{
		Client: client.Name,
		Date:   q.Get("date"),
	}
	if raw := q.Get("status"); raw != "" {
		s, ok := model.ParseStatus(raw)
		if !ok {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		filter.Status = s
	}

	appts, err := h.repo.Load(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history.Build(appts, filter))
}
