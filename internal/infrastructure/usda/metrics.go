package usda

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream request metrics
	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labelpal_usda_request_duration_seconds",
			Help:    "USDA FoodData Central request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// Lookup outcomes after fail-soft conversion
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelpal_usda_lookups_total",
			Help: "Total number of USDA lookups by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Response cache metrics
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labelpal_usda_cache_hits_total",
			Help: "Total number of USDA responses served from cache",
		},
	)
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labelpal_usda_cache_misses_total",
			Help: "Total number of USDA responses not found in cache",
		},
	)
)

// endpointLabel collapses per-food paths so the label stays low-cardinality
func endpointLabel(endpoint string) string {
	if strings.HasPrefix(endpoint, foodEndpointPrefix) {
		return foodEndpointPrefix + ":fdcId"
	}
	return endpoint
}
