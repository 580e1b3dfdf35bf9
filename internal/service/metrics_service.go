package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the booking
// engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	bookingsCreated   prometheus.Counter
	bookingsConfirmed prometheus.Counter
	bookingsCancelled prometheus.Counter
	slotConflicts     prometheus.Counter
	wizardAbandoned   prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total bookings created",
	})

	bookingsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_confirmed_total",
		Help: "Total bookings confirmed and paid",
	})

	bookingsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Total bookings cancelled",
	})

	slotConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slot_conflicts_total",
		Help: "Booking attempts rejected because the slot was taken",
	})

	wizardAbandoned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_sessions_expired_total",
		Help: "Wizard sessions that expired before confirmation",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bookingsCreated, bookingsConfirmed, bookingsCancelled, slotConflicts, wizardAbandoned, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		bookingsCreated:   bookingsCreated,
		bookingsConfirmed: bookingsConfirmed,
		bookingsCancelled: bookingsCancelled,
		slotConflicts:     slotConflicts,
		wizardAbandoned:   wizardAbandoned,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// BookingCreated increments the created counter.
func (m *MetricsService) BookingCreated() {
	if m != nil {
		m.bookingsCreated.Inc()
	}
}

// BookingConfirmed increments the confirmed counter.
func (m *MetricsService) BookingConfirmed() {
	if m != nil {
		m.bookingsConfirmed.Inc()
	}
}

// BookingCancelled increments the cancelled counter.
func (m *MetricsService) BookingCancelled() {
	if m != nil {
		m.bookingsCancelled.Inc()
	}
}

// SlotConflict increments the conflict counter.
func (m *MetricsService) SlotConflict() {
	if m != nil {
		m.slotConflicts.Inc()
	}
}

// WizardExpired increments the expired wizard counter.
func (m *MetricsService) WizardExpired() {
	if m != nil {
		m.wizardAbandoned.Inc()
	}
}
