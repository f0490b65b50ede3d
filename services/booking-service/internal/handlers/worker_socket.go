package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/dashboard"
)

const socketWriteWait = 10 * time.Second

type socketMessage struct {
	Type string          `json:"type"`
	View *dashboard.View `json:"view,omitempty"`
}

// AllowSocketOrigins lists the cross-origin pages that may open the dashboard
// socket. Same-origin pages are always accepted.
func (h *WorkerHandler) AllowSocketOrigins(origins []string) {
	allowed := map[string]bool{}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] || allowed[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Socket is the websocket twin of Stream. Browsers cannot set headers on the
// handshake, so the token may also arrive as ?access_token=.
func (h *WorkerHandler) Socket(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	if token := r.URL.Query().Get("access_token"); token != "" && r.Header.Get("Authorization") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("Authorization", "Bearer "+token)
	}
	workerID := h.resolver.WorkerID(r)
	if _, err := h.dashboard.View(r.Context(), workerID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("dashboard socket upgrade failed", "worker_id", workerID, "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.dashboard.Watch(ctx, h.poller, workerID, func(v dashboard.View) error {
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		return conn.WriteJSON(socketMessage{Type: "dashboard", View: &v})
	})
	if err == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		return
	}
	kind := "error"
	if errors.Is(err, dashboard.ErrRedirectToLogin) {
		kind = "redirect"
	}
	h.logger.Warn("dashboard socket ended", "worker_id", workerID, "err", err)
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	_ = conn.WriteJSON(socketMessage{Type: kind})
}
