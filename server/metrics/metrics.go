package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates Prometheus metrics for the relay.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec
	ErrorsTotal     *prometheus.CounterVec
	RateLimitHits   *prometheus.CounterVec

	// WebhookEventsTotal counts inbound webhook payloads by how they were
	// classified: message, status, or invalid.
	WebhookEventsTotal *prometheus.CounterVec

	// CompletionsTotal counts completion API calls by result.
	CompletionsTotal *prometheus.CounterVec

	// SendsTotal counts outbound Fonnte deliveries by result and by kind
	// (generated reply or fallback).
	SendsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with a custom registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "theo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "theo_http_active_requests",
				Help: "Number of currently active HTTP requests",
			},
			[]string{"endpoint"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_rate_limit_hits_total",
				Help: "Total number of rate limit hits by client",
			},
			[]string{"client"},
		),
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_webhook_events_total",
				Help: "Total number of inbound webhook payloads by classification",
			},
			[]string{"kind"},
		),
		CompletionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_completions_total",
				Help: "Total number of completion API calls by result",
			},
			[]string{"result"},
		),
		SendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "theo_sends_total",
				Help: "Total number of outbound Fonnte deliveries by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize webhook classification series so dashboards start at zero
	m.WebhookEventsTotal.WithLabelValues("message").Add(0)
	m.WebhookEventsTotal.WithLabelValues("status").Add(0)
	m.WebhookEventsTotal.WithLabelValues("invalid").Add(0)

	return m
}

// Handler returns a handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: false, // Disable OpenMetrics format to avoid escaping=values
	})
}
