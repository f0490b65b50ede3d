package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/discount"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type AppointmentHandler struct {
	bookings  *booking.Service
	machine   *lifecycle.Machine
	repo      *storage.AppointmentRepository
	discounts *Discounts
	directory *session.Directory
	resolver  *session.Resolver
	logger    *slog.Logger
}

func NewAppointmentHandler(bookings *booking.Service, machine *lifecycle.Machine, repo *storage.AppointmentRepository, discounts *Discounts, directory *session.Directory, resolver *session.Resolver, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		bookings:  bookings,
		machine:   machine,
		repo:      repo,
		discounts: discounts,
		directory: directory,
		resolver:  resolver,
		logger:    logger,
	}
}

type appointmentResponse struct {
	Appointment model.Appointment `json:"appointment"`
}

type adminMessageRequest struct {
	AppointmentID string `json:"appointment_id"`
	Message       string `json:"message"`
}

type clientCancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type workerListing struct {
	model.Worker
	Price *discount.PriceLabel `json:"price,omitempty"`
}

// Create books a pending appointment and consumes the installation's discount
// when one is available.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	var req booking.Request
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	appt, err := h.bookings.Create(r.Context(), req, h.discounts.For(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointmentResponse{Appointment: appt})
}

// Cancel lets a client withdraw their own pending or confirmed appointment.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	client := h.resolver.Client(r)
	if client.Name == "" && client.Email == "" {
		writeJSON(w, http.StatusUnauthorized, redirectResponse{Redirect: loginPath})
		return
	}
	var req clientCancelRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.Load(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	owned := false
	for _, a := range appts {
		if a.ID == req.AppointmentID {
			owned = ownsAppointment(a, client)
			if !owned {
				http.Error(w, "appointment belongs to another client", http.StatusForbidden)
				return
			}
		}
	}
	if !owned {
		writeDomainError(w, h.logger, lifecycle.ErrNotFound)
		return
	}

	actor := "client:" + client.Name
	if client.Email != "" {
		actor = "client:" + client.Email
	}
	appt, err := h.machine.Cancel(r.Context(), req.AppointmentID, actor, req.Reason)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentResponse{Appointment: appt})
}

func ownsAppointment(a model.Appointment, c session.Client) bool {
	if c.Email != "" && strings.EqualFold(a.UserEmail, c.Email) {
		return true
	}
	return c.Name != "" && a.UserName == c.Name
}

// AdminMessage attaches a staff note. Any signed-in worker may leave one.
func (h *AppointmentHandler) AdminMessage(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}
	workerID := h.resolver.WorkerID(r)
	if _, ok := h.directory.Lookup(workerID); !ok {
		writeJSON(w, http.StatusUnauthorized, redirectResponse{Redirect: loginPath})
		return
	}
	var req adminMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.machine.AttachAdminMessage(r.Context(), req.AppointmentID, req.Message)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentResponse{Appointment: appt})
}

// Workers lists the roster with a price label, struck through while the
// installation holds an unused discount.
func (h *AppointmentHandler) Workers(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	engine := h.discounts.For(r)
	available, err := engine.HasAvailableDiscount(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	out := make([]workerListing, 0)
	for _, wk := range h.directory.All() {
		item := workerListing{Worker: wk}
		if wk.Fee != "" {
			label, err := discount.Label(wk.Fee, engine.Percentage(), available)
			if err != nil {
				h.logger.Warn("worker fee not numeric", "worker_id", wk.ID, "fee", wk.Fee)
			} else {
				item.Price = &label
			}
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}
