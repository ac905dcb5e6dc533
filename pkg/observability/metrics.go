package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts completed HTTP requests by method, path and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_chat_http_requests_total",
		Help: "Completed HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "persona_chat_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// StreamsStarted counts message streams that reached the relay loop
	StreamsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_chat_streams_started_total",
		Help: "Completion streams opened",
	})

	// StreamsCompleted counts streams that finished cleanly
	StreamsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_chat_streams_completed_total",
		Help: "Completion streams finished cleanly",
	})

	// StreamsFailed counts streams that ended with a provider error
	StreamsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_chat_streams_failed_total",
		Help: "Completion streams ended by a provider error",
	})

	// DeltasRelayed counts text deltas forwarded to clients
	DeltasRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "persona_chat_deltas_relayed_total",
		Help: "Incremental text deltas forwarded to clients",
	})
)

// MetricsMiddleware records request counts and latency per route
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
