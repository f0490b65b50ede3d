package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
)

type AuthHandler struct {
	directory *session.Directory
	signer    *auth.Signer
	logger    *slog.Logger
}

func NewAuthHandler(directory *session.Directory, signer *auth.Signer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{directory: directory, signer: signer, logger: logger}
}

type workerLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type clientSessionRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   string        `json:"expires_at"`
	Worker      *model.Worker `json:"worker,omitempty"`
}

func (h *AuthHandler) WorkerLogin(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	var req workerLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	worker, err := h.directory.Authenticate(req.Username, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.logger.Warn("worker login rejected", "username", req.Username)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	token, exp, err := h.signer.Sign(worker.ID, auth.RoleWorker, worker.Name, "")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	public := worker.Public()
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		ExpiresAt:   exp.UTC().Format(time.RFC3339),
		Worker:      &public,
	})
}

// ClientSession issues a token that carries the identity a client books with.
// Clients have no password; the token only saves resending the headers.
func (h *AuthHandler) ClientSession(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	var req clientSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "name and a valid email required", http.StatusBadRequest)
		return
	}
	token, exp, err := h.signer.Sign(strings.ToLower(req.Email), auth.RoleClient, req.Name, req.Email)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, ExpiresAt: exp.UTC().Format(time.RFC3339)})
}
