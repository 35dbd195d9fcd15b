package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Request coalescer metrics
	CoalescerReplaysTotal      *prometheus.CounterVec
	CoalescerFallthroughsTotal *prometheus.CounterVec
	CoalescerEvictionsTotal    prometheus.Counter
	CoalescerEntries           prometheus.Gauge

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			CoalescerReplaysTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "coalescer_replays_total",
					Help: "Duplicate requests answered from a captured response",
				},
				[]string{"method", "path"},
			),
			CoalescerFallthroughsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "coalescer_fallthroughs_total",
					Help: "Duplicate requests that executed independently (owner failed or produced no JSON)",
				},
				[]string{"method", "path", "reason"},
			),
			CoalescerEvictionsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "coalescer_evictions_total",
					Help: "Entries removed from the coalescer table",
				},
			),
			CoalescerEntries: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "coalescer_entries",
					Help: "Entries currently tracked in the coalescer table",
				},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by rate limiting",
				},
				[]string{"endpoint", "method"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Application errors by type and endpoint",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})

	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
