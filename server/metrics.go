package server

import (
	"strconv"
	"time"

	"github.com/mhpenta/profileinator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects HTTP and generation metrics for the /metrics endpoint.
// Each Metrics carries its own registry so servers can be created freely in
// tests without colliding in the default registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	variantsGenerated prometheus.Counter
	variantsFailed    prometheus.Counter
	generateDuration  prometheus.Histogram
}

// NewMetrics registers and returns the server metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "profileinator",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "profileinator",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		variantsGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "profileinator",
				Name:      "variants_generated_total",
				Help:      "Total number of variants generated successfully",
			},
		),
		variantsFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "profileinator",
				Name:      "variants_failed_total",
				Help:      "Total number of variant slots filled with placeholders",
			},
		),
		generateDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "profileinator",
				Name:      "generate_duration_seconds",
				Help:      "End-to-end duration of a generate request",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveGeneration records the outcome of one generate request.
func (m *Metrics) ObserveGeneration(variants []profileinator.Variant, duration time.Duration) {
	for _, v := range variants {
		if v.Failed() {
			m.variantsFailed.Inc()
		} else {
			m.variantsGenerated.Inc()
		}
	}
	m.generateDuration.Observe(duration.Seconds())
}
