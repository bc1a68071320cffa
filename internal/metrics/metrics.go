// Package metrics instruments outbound API traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "property_client",
		Name:      "api_requests_total",
		Help:      "Outbound API requests by resource, method and status code.",
	}, []string{"resource", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "property_client",
		Name:      "api_request_duration_seconds",
		Help:      "Outbound API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "method"})

	networkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "property_client",
		Name:      "api_network_errors_total",
		Help:      "Requests that failed before a response was received.",
	}, []string{"resource", "method"})
)

// ObserveRequest records one completed request.
func ObserveRequest(resource, method string, code int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(resource, method, strconv.Itoa(code)).Inc()
	requestDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// ObserveNetworkError records a request that never produced a response.
func ObserveNetworkError(resource, method string) {
	networkErrors.WithLabelValues(resource, method).Inc()
}
