package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the Prometheus collectors of the reservation service. A nil
// *Registry is valid and records nothing.
type Registry struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Reservations
	BookingsTotal   *prometheus.CounterVec
	BookingAttempts prometheus.Histogram
	OperationsTotal *prometheus.CounterVec

	// Cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Messaging
	EventsPublishedTotal *prometheus.CounterVec
}

// NewRegistry registers every collector on reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_http_requests_total",
				Help: "Total HTTP requests processed by route, method and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airreservations_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "airreservations_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
			[]string{"route"},
		),
		BookingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_bookings_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		BookingAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "airreservations_booking_transaction_attempts",
				Help:    "Transactions run per booking before it committed or gave up",
				Buckets: []float64{1, 2, 3, 4, 5, 10},
			},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_operations_total",
				Help: "Passenger, route and rating operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_cache_hits_total",
				Help: "Cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_cache_misses_total",
				Help: "Cache misses by cache name",
			},
			[]string{"cache"},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airreservations_events_published_total",
				Help: "Domain events handed to the broker by type and status",
			},
			[]string{"type", "status"},
		),
	}
}

func (r *Registry) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (r *Registry) InFlight(route string, delta float64) {
	if r == nil {
		return
	}
	r.HTTPRequestsInFlight.WithLabelValues(route).Add(delta)
}

func (r *Registry) ObserveBooking(outcome string, attempts int) {
	if r == nil {
		return
	}
	r.BookingsTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		r.BookingAttempts.Observe(float64(attempts))
	}
}

func (r *Registry) ObserveOperation(operation, outcome string) {
	if r == nil {
		return
	}
	r.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (r *Registry) CacheHit(name string) {
	if r == nil {
		return
	}
	r.CacheHitsTotal.WithLabelValues(name).Inc()
}

func (r *Registry) CacheMiss(name string) {
	if r == nil {
		return
	}
	r.CacheMissesTotal.WithLabelValues(name).Inc()
}

func (r *Registry) EventPublished(eventType string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
