package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/dashboard"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
)

const loginPath = "/login"

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// writeDomainError maps core sentinels onto HTTP statuses. Anything it does not
// recognise is logged and reported as 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, dashboard.ErrRedirectToLogin):
		writeJSON(w, http.StatusUnauthorized, redirectResponse{Redirect: loginPath})
	case errors.Is(err, lifecycle.ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, dashboard.ErrNotAssigned):
		http.Error(w, "appointment is not assigned to you", http.StatusForbidden)
	case errors.Is(err, booking.ErrInvalidRequest), errors.Is(err, booking.ErrUnknownWorker):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func methodAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
