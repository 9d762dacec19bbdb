// Package metrics registers the Prometheus instruments exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by path and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "accountd",
		Name:      "http_requests_total",
		Help:      "Total number of handled HTTP requests.",
	}, []string{"path", "status"})

	// RequestDuration observes request latency by path.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "accountd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})
)
