package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "factlens",
			Name:      "search_stage_duration_seconds",
			Help:      "Search pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // "keyword" / "semantic" / "rrf" / "total"
	)

	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factlens",
			Name:      "search_results_total",
			Help:      "Total results returned per retrieval source",
		},
		[]string{"source"}, // "keyword" / "semantic" / "rrf"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factlens",
			Name:      "search_requests_total",
			Help:      "Total search requests",
		},
		[]string{"status"}, // "success" / "error" / "degraded"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(SearchResultsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	searchMetricsRegistered = true
}
