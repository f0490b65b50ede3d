package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/dashboard"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
)

type WorkerHandler struct {
	dashboard *dashboard.Dashboard
	resolver  *session.Resolver
	poller    *dashboard.Poller
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewWorkerHandler(d *dashboard.Dashboard, resolver *session.Resolver, poller *dashboard.Poller, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{
		dashboard: d,
		resolver:  resolver,
		poller:    poller,
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:    logger,
	}
}

// workerActionRequest carries the worker's answers to the confirmation step.
// Confirmed=false declines it; a null Reason declines the cancel prompt.
type workerActionRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Confirmed     bool    `json:"confirmed"`
	Reason        *string `json:"reason"`
}

type workerActionResponse struct {
	Aborted bool           `json:"aborted"`
	View    dashboard.View `json:"view"`
}

func (h *WorkerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	view, err := h.dashboard.View(r.Context(), h.resolver.WorkerID(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Stream pushes a freshly derived dashboard as a server-sent event on every
// poll until the client goes away.
func (h *WorkerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	workerID := h.resolver.WorkerID(r)
	started := false
	err := h.dashboard.Watch(r.Context(), h.poller, workerID, func(v dashboard.View) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err == nil {
		return
	}
	if !started {
		writeDomainError(w, h.logger, err)
		return
	}
	event := "error"
	if errors.Is(err, dashboard.ErrRedirectToLogin) {
		event = "redirect"
	}
	h.logger.Warn("dashboard stream ended", "worker_id", workerID, "err", err)
	_, _ = fmt.Fprintf(w, "event: %s\ndata: {}\n\n", event)
	flusher.Flush()
}

func (h *WorkerHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.dashboard.ConfirmAppointment)
}

func (h *WorkerHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.dashboard.CompleteAppointment)
}

func (h *WorkerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.dashboard.CancelAppointment)
}

type dashboardAction func(ctx context.Context, workerID, id string, gate dashboard.Gate) (dashboard.View, error)

func (h *WorkerHandler) act(w http.ResponseWriter, r *http.Request, action dashboardAction) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	var req workerActionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	view, err := action(r.Context(), h.resolver.WorkerID(r), req.AppointmentID, dashboard.Answers{
		Confirmed: req.Confirmed,
		Reason:    req.Reason,
	})
	if errors.Is(err, dashboard.ErrAborted) {
		writeJSON(w, http.StatusOK, workerActionResponse{Aborted: true, View: view})
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workerActionResponse{View: view})
}
