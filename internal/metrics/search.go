package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by result",
		},
		[]string{"status"}, // "ok" / "invalid" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchQueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_query_cache_total",
			Help:      "Parsed query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers search metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchQueryCacheTotal)
	})
}
