package metrics

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	completions     *prometheus.CounterVec
	grantsIssued    prometheus.Counter
	grantsRedeemed  prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Applied appointment status transitions by target status.",
		}, []string{"status"}),
		completions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_completions_total",
			Help: "Completed appointments by assigned worker.",
		}, []string{"worker"}),
		grantsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "discount_grants_issued_total",
			Help: "New-client discount grants written.",
		}),
		grantsRedeemed: f.NewCounter(prometheus.CounterOpts{
			Name: "discount_grants_redeemed_total",
			Help: "New-client discount grants consumed by a booking.",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordTransition(to model.Status) {
	m.transitions.WithLabelValues(string(to)).Inc()
}

// AppointmentCompleted refreshes the per-worker completion count.
func (m *Metrics) AppointmentCompleted(_ context.Context, appt model.Appointment) {
	worker := appt.AssignedWorker
	if worker == "" {
		worker = "unassigned"
	}
	m.completions.WithLabelValues(worker).Inc()
}

func (m *Metrics) GrantIssued() {
	m.grantsIssued.Inc()
}

func (m *Metrics) DiscountRedeemed() {
	m.grantsRedeemed.Inc()
}

// Instrument times every request under the given route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.requestDuration.WithLabelValues(route, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(w.ResponseWriter).Hijack()
	if err == nil {
		w.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
