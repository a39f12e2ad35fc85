package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_request_duration_seconds",
			Help:    "Search request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source", "status"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"outcome"},
	)

	ExtractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_extraction_total",
			Help: "Query understanding invocations by path",
		},
		[]string{"path", "status"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interpretation_cache_hits_total",
			Help: "Total number of interpretation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interpretation_cache_misses_total",
			Help: "Total number of interpretation cache misses",
		},
	)

	SemanticQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "semantic_query_duration_seconds",
			Help:    "Semantic index query duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"index", "status"},
	)

	SemanticFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semantic_fallback_total",
			Help: "Semantic fallback invocations by result",
		},
		[]string{"status"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the sliding-window rate limiter",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SlowQueryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slow_query_total",
			Help: "Total number of slow queries",
		},
		[]string{"severity", "source"},
	)
)
