package handlers

import (
	"net/http"
)

type Server struct {
	Auth         *AuthHandler
	History      *HistoryHandler
	Worker       *WorkerHandler
	Appointments *AppointmentHandler
	Discount     *DiscountHandler
}

// RouteWrapper decorates one route; route is a stable label for metrics.
type RouteWrapper func(route string, h http.Handler) http.Handler

// Register mounts the API. login wraps only the credential endpoint; either
// argument may be nil.
func (s *Server) Register(mux *http.ServeMux, wrap RouteWrapper, login func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(_ string, h http.Handler) http.Handler { return h }
	}
	handle := func(path, route string, fn http.HandlerFunc) {
		mux.Handle(path, wrap(route, fn))
	}

	workerLogin := http.Handler(http.HandlerFunc(s.Auth.WorkerLogin))
	if login != nil {
		workerLogin = login(workerLogin)
	}
	mux.Handle("/api/v1/auth/worker-login", wrap("worker_login", workerLogin))
	handle("/api/v1/auth/client-session", "client_session", s.Auth.ClientSession)

	handle("/api/v1/history", "history", s.History.List)

	handle("/api/v1/worker/dashboard", "worker_dashboard", s.Worker.Dashboard)
	handle("/api/v1/worker/dashboard/stream", "worker_dashboard_stream", s.Worker.Stream)
	handle("/api/v1/worker/dashboard/ws", "worker_dashboard_ws", s.Worker.Socket)
	handle("/api/v1/worker/appointments/confirm", "worker_confirm", s.Worker.Confirm)
	handle("/api/v1/worker/appointments/complete", "worker_complete", s.Worker.Complete)
	handle("/api/v1/worker/appointments/cancel", "worker_cancel", s.Worker.Cancel)

	handle("/api/v1/appointments", "book", s.Appointments.Create)
	handle("/api/v1/appointments/cancel", "client_cancel", s.Appointments.Cancel)
	handle("/api/v1/appointments/admin-message", "admin_message", s.Appointments.AdminMessage)
	handle("/api/v1/workers", "workers", s.Appointments.Workers)

	handle("/api/v1/discount", "discount_status", s.Discount.Status)
	handle("/api/v1/discount/evaluate", "discount_evaluate", s.Discount.Evaluate)
}
