package httpclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homefix_client_requests_total",
			Help: "Total number of outbound HTTP requests",
		},
		[]string{"client", "method", "path", "status"},
	)

	clientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homefix_client_request_duration_seconds",
			Help:    "Outbound HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"client", "method", "path", "status"},
	)
)

func observeRequest(client, method, path, status string, d time.Duration) {
	clientRequestsTotal.WithLabelValues(client, method, path, status).Inc()
	clientRequestDuration.WithLabelValues(client, method, path, status).Observe(d.Seconds())
}
