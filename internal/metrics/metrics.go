package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec

	// Token metrics
	TokensTotal *prometheus.CounterVec
	CostUSD     prometheus.Counter

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter

	// Memory metrics
	LearningsStored prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_requests_total",
				Help: "Total number of backend requests",
			},
			[]string{"provider", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_request_duration_seconds",
				Help:    "Duration of backend requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_retries_total",
				Help: "Total number of backend request retries",
			},
			[]string{"provider"},
		),

		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_tokens_total",
				Help: "Total number of tokens exchanged with the backend",
			},
			[]string{"direction"},
		),
		CostUSD: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_estimated_cost_usd_total",
				Help: "Cumulative estimated backend cost in USD",
			},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Number of currently active sessions",
			},
		),
		SessionsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_evicted_total",
				Help: "Total number of sessions removed by age-based cleanup",
			},
		),

		LearningsStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "memory_learnings_stored_total",
				Help: "Total number of learnings appended to persistent memory",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.RequestsTotal)
	m.registry.MustRegister(m.RequestDuration)
	m.registry.MustRegister(m.RetriesTotal)
	m.registry.MustRegister(m.TokensTotal)
	m.registry.MustRegister(m.CostUSD)
	m.registry.MustRegister(m.SessionsActive)
	m.registry.MustRegister(m.SessionsEvicted)
	m.registry.MustRegister(m.LearningsStored)
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
