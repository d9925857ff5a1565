package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "galerie",
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "galerie",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SlugRenamesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galerie",
			Name:      "slug_renames_total",
			Help:      "Number of committed slug renames.",
		},
	)

	SlugRenameConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galerie",
			Name:      "slug_rename_conflicts_total",
			Help:      "Number of slug rename attempts that lost the uniqueness race.",
		},
	)

	ImagesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galerie",
			Name:      "images_processed_total",
			Help:      "Number of originals turned into display variants.",
		},
	)
)
