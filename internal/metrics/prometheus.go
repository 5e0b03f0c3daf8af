package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// UpstreamRequestsTotal tracks calls to the upstream store API by outcome
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests made to the upstream store API",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamRequestDuration tracks upstream call latency
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream store API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures tracks circuit breaker failures
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	// BulkheadActiveRequests tracks active requests in bulkhead
	BulkheadActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bulkhead_active_requests",
			Help: "Number of active requests in bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// BulkheadRejectedRequests tracks rejected requests by bulkhead
	BulkheadRejectedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkhead_rejected_requests_total",
			Help: "Total number of rejected requests by bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// FanOutItemFailures tracks fan-out items whose operation failed
	FanOutItemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_item_failures_total",
			Help: "Total number of failed items during fan-out aggregation",
		},
		[]string{"service", "fanout_name"},
	)

	// OrdersAggregated tracks orders counted into fleet summaries
	OrdersAggregated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_orders_aggregated_total",
			Help: "Total number of orders counted into fleet summaries",
		},
	)

	// AnomaliesDetected tracks detected anomalies by type and severity
	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anomalies_detected_total",
			Help: "Total number of detected store anomalies",
		},
		[]string{"type", "severity"},
	)

	// OrderStreamClients tracks connected order stream websocket clients
	OrderStreamClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "order_stream_clients",
			Help: "Number of connected order stream clients",
		},
		[]string{"service"},
	)

	// ChaosFailureRate tracks chaos engineering failure simulations
	ChaosFailureRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_failure_enabled",
			Help: "Whether chaos failure mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)

	// ChaosSlowMode tracks slow response simulation
	ChaosSlowMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_slow_mode_enabled",
			Help: "Whether chaos slow mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}
