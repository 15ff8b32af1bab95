// Package metrics exposes Prometheus collectors for the landing preview service.
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
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	landingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landing_requests_total",
			Help: "Landing page requests, labeled by classification outcome (crawler or human).",
		},
		[]string{"outcome"},
	)

	identifiersGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landing_identifiers_generated_total",
			Help: "Landing URLs minted through the generate API.",
		},
	)

	prewarmFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prewarm_fetches_total",
			Help: "Pre-warm fetches, labeled by result (success, failure, timeout).",
		},
		[]string{"result"},
	)

	prewarmDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prewarm_duration_seconds",
			Help:    "Wall time of a full pre-warm fan-out.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveLanding counts a dispatched landing request.
func ObserveLanding(outcome string) {
	landingRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGenerated counts a minted landing URL.
func ObserveGenerated() {
	identifiersGeneratedTotal.Inc()
}

// ObservePrewarmFetch counts a single pre-warm fetch result.
func ObservePrewarmFetch(result string) {
	prewarmFetchesTotal.WithLabelValues(result).Inc()
}

// ObservePrewarm records the duration of a full pre-warm.
func ObservePrewarm(duration time.Duration) {
	prewarmDurationSeconds.Observe(duration.Seconds())
}
