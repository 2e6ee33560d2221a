package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	heliosRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helios_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	heliosRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helios_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	heliosClaimsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helios_claims_submitted_total",
		Help: "Total claims accepted into the ledger.",
	})

	heliosVerificationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helios_verification_runs_total",
		Help: "Total orchestration runs by outcome status.",
	}, []string{"result"})

	heliosChainChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helios_chain_checks_total",
		Help: "Total ledger chain integrity checks by result.",
	}, []string{"result"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request
// metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		heliosRequestsTotal.WithLabelValues(method, path, status).Inc()
		heliosRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordChainCheck records the outcome of a chain integrity check.
func RecordChainCheck(ok bool) {
	result := "ok"
	if !ok {
		result = "broken"
	}
	heliosChainChecksTotal.WithLabelValues(result).Inc()
}
