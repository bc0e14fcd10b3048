// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"status"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recommendation_duration_seconds",
			Help: "Duration of recommendation evaluation in seconds",
		},
		[]string{"stage"},
	)

	NormalizedBatchSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "normalized_batch_size",
			Help: "Number of products in the current normalized batch",
		},
	)

	NormalizationWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalization_warnings_total",
			Help: "Row-level degradations absorbed during normalization",
		},
		[]string{"kind"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Catalog cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
