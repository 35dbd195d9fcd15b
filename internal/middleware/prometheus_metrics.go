package middleware

import (
	"bytes"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		m.HTTPActiveConnections.WithLabelValues(method, path).Inc()
		defer m.HTTPActiveConnections.WithLabelValues(method, path).Dec()

		writer := &metricsResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		startTime := time.Now()
		c.Next()
		duration := time.Since(startTime).Seconds()

		// Numeric status as a label so Grafana can match status=~"5.."
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		if size := writer.body.Len(); size > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path, statusStr).Observe(float64(size))
		}
	}
}

// Coalescer recorders, called from the request coalescer

func RecordCoalescerReplay(method, path string) {
	metrics.Get().CoalescerReplaysTotal.WithLabelValues(method, path).Inc()
}

func RecordCoalescerFallthrough(method, path, reason string) {
	metrics.Get().CoalescerFallthroughsTotal.WithLabelValues(method, path, reason).Inc()
}

func RecordCoalescerEviction(count int) {
	metrics.Get().CoalescerEvictionsTotal.Add(float64(count))
}

func RecordCoalescerSize(size int) {
	metrics.Get().CoalescerEntries.Set(float64(size))
}

// RecordRateLimitExceeded records a request rejected by rate limiting
func RecordRateLimitExceeded(endpoint, method string) {
	metrics.Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

// metricsResponseWriter intercepts response writes to capture size
type metricsResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *metricsResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *metricsResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
