// Prometheus instrumentation for outbound API traffic.
//
// Labels are kept low-cardinality on purpose: the resource label is the
// leading path segment (bounded by the API surface), never the raw URL.

package transport

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// apiRequests counts completed requests by method, resource, and outcome.
	// Outcome is "ok" or the failure kind ("rate_limited", "unreachable", ...).
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_api_requests_total",
			Help: "Total number of requests issued to the remote API.",
		},
		[]string{"method", "resource", "outcome"},
	)

	// apiLatency records request duration in seconds by method and resource.
	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_api_request_duration_seconds",
			Help:    "Duration of remote API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)

	// apiRetries counts automatic rate-limit retries (at most one per
	// logical request).
	apiRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_api_rate_limit_retries_total",
			Help: "Total number of automatic retries after HTTP 429.",
		},
	)
)

func init() {
	prometheus.MustRegister(apiRequests, apiLatency, apiRetries)
}
