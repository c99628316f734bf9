package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search orchestration Prometheus metrics.
var (
	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "civicsearch",
			Name:      "source_request_duration_seconds",
			Help:      "Upstream source call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)

	SourceOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civicsearch",
			Name:      "source_outcomes_total",
			Help:      "Adapter outcomes per source and status",
		},
		[]string{"source", "status"}, // status: ok/timeout/error/rate_limited
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civicsearch",
			Name:      "cache_total",
			Help:      "Cache hits and misses per tier",
		},
		[]string{"tier", "result"}, // tier: composite/source, result: hit/miss
	)

	CacheFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "civicsearch",
			Name:      "cache_fallback_total",
			Help:      "Operations served by the local store after a shared-store failure",
		},
	)

	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "civicsearch",
			Name:      "rate_limit_denied_total",
			Help:      "Requests denied by the caller rate limiter",
		},
	)

	SearchResultsMerged = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "civicsearch",
			Name:      "search_results_merged",
			Help:      "Merged result count per search after dedup",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(SourceOutcomesTotal)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(CacheFallbackTotal)
	prometheus.MustRegister(RateLimitDeniedTotal)
	prometheus.MustRegister(SearchResultsMerged)
	searchMetricsRegistered = true
}
