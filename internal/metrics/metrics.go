package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_intranet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_intranet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_intranet_upstream_calls_total",
			Help: "Total Drive and Drive Activity API calls",
		},
		[]string{"operation", "status"},
	)

	upstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_intranet_upstream_call_duration_seconds",
			Help:    "Drive API call duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	crawlDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drive_intranet_crawl_duration_seconds",
			Help:    "Time to rebuild the descendant index",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	indexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drive_intranet_index_size",
			Help: "Number of ids in the descendant index",
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_intranet_auth_attempts_total",
			Help: "Total sign-in attempts",
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstreamCall records a call to a Google API
func RecordUpstreamCall(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	upstreamCallsTotal.WithLabelValues(operation, status).Inc()
	upstreamCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCrawl records a completed crawl and the resulting index size
func RecordCrawl(duration time.Duration, size int) {
	crawlDuration.Observe(duration.Seconds())
	indexSize.Set(float64(size))
}

// RecordAuthAttempt records a sign-in attempt. result is one of
// "success", "denied" or "error".
func RecordAuthAttempt(result string) {
	authAttemptsTotal.WithLabelValues(result).Inc()
}
