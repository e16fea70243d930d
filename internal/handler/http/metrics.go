package http

import (
	"net/http"
	"strconv"
	"time"

	"scrollfeed/internal/handler/http/pathutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Buckets run from 5ms to 10s: the low end covers pool-cache hits,
	// the high end covers a cold refill fanning out to slow upstreams
	// under the 5s adapter deadline plus assembly.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// Scroll engine metrics.
	scrollBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scroll_batches_served_total",
			Help: "Batches served, labeled by assembly path (tier or filter)",
		},
		[]string{"path"},
	)

	scrollBatchItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scroll_batch_items",
			Help:    "Items per served batch",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	bridgeCommentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_comments_total",
			Help: "Bridge comment publish attempts by outcome",
		},
		[]string{"status"},
	)
)

// responseWriter wraps http.ResponseWriter to record status code and
// response size for the metrics below.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// MetricsMiddleware records per-request metrics: in-flight gauge,
// duration, request/response sizes, and status distribution. Paths are
// normalized first so item ids in detail URLs cannot explode the label
// set.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		normalizedPath := pathutil.NormalizePath(r.URL.Path)

		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(r.Method, normalizedPath).Observe(float64(r.ContentLength))
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()

		status := strconv.Itoa(rw.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, normalizedPath, status).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, normalizedPath).Observe(float64(rw.size))
	})
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordBatchServed counts one served batch and its size. filtered
// distinguishes the filter path from tier assembly.
func RecordBatchServed(filtered bool, itemCount int) {
	path := "tier"
	if filtered {
		path = "filter"
	}
	scrollBatchesTotal.WithLabelValues(path).Inc()
	scrollBatchItems.Observe(float64(itemCount))
}

// RecordBridgeComment counts one bridge comment publish attempt.
func RecordBridgeComment(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	bridgeCommentsTotal.WithLabelValues(status).Inc()
}
