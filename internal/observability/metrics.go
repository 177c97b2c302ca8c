package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/complaint-tickets/internal/events"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	classifications *prometheus.CounterVec
	tickets         *prometheus.CounterVec
	appendFailures  prometheus.Counter
	notifications   *prometheus.CounterVec
	runDuration     prometheus.Histogram
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"route", "method", "code"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_classifications_total",
			Help: "Complaints classified, by category.",
		}, []string{"category"}),
		tickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets appended to the ledger, by kind.",
		}, []string{"kind"}),
		appendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_append_failures_total",
			Help: "Ledger appends that failed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification attempts by channel and result.",
		}, []string{"channel", "result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Duration of pipeline runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration, m.errors, m.classifications,
		m.tickets, m.appendFailures, m.notifications, m.runDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// Subscribe attaches pipeline counters to dispatcher.
func (m *Metrics) Subscribe(dispatcher events.Dispatcher) {
	if m == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventComplaintClassified, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.ComplaintClassifiedPayload); ok {
			m.classifications.WithLabelValues(string(p.Category)).Inc()
		}
		return nil
	})
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.TicketCreatedPayload); ok {
			m.tickets.WithLabelValues(string(p.Kind)).Inc()
		}
		return nil
	})
	dispatcher.Subscribe(events.EventLedgerAppendFailed, func(context.Context, events.Event) error {
		m.appendFailures.Inc()
		return nil
	})
	dispatcher.Subscribe(events.EventNotificationResult, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.NotificationResultPayload); ok {
			result := "failure"
			if p.Outcome.Success {
				result = "success"
			}
			m.notifications.WithLabelValues(p.Outcome.Channel, result).Inc()
		}
		return nil
	})
	dispatcher.Subscribe(events.EventBatchProcessed, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.BatchProcessedPayload); ok {
			m.runDuration.Observe(p.Duration.Seconds())
		}
		return nil
	})
}
