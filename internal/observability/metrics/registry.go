// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Aggregation metrics track the fan-out to news sources and the dedup pipeline
var (
	// SourceRequestsTotal counts calls made to each source by operation and result
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_requests_total",
			Help: "Total number of calls to news sources",
		},
		[]string{"source", "operation", "result"}, // result: success, failure
	)

	// SourceRequestDuration measures the latency of a single source call
	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_request_duration_seconds",
			Help:    "Time taken by a single news source call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"source", "operation"},
	)

	// ArticlesFetchedTotal counts raw articles returned by each source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of raw articles returned by sources",
		},
		[]string{"source"},
	)

	// ArticlesSkippedTotal counts malformed provider items dropped by adapters
	ArticlesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_skipped_total",
			Help: "Total number of malformed provider items skipped",
		},
		[]string{"source"},
	)

	// DedupMergedTotal counts articles absorbed into another record by strategy
	DedupMergedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_merged_total",
			Help: "Total number of duplicate articles merged",
		},
		[]string{"strategy"},
	)

	// AggregationDuration measures a whole fetch/search aggregation
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Time taken by a full aggregation call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	// SourceAvailable reports the last health probe result per source (1 up, 0 down)
	SourceAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_available",
			Help: "Last health probe result per news source",
		},
		[]string{"source"},
	)
)

// Snapshot metrics track the scheduled refresher
var (
	// SnapshotRunsTotal counts snapshot refresh runs by result
	SnapshotRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_runs_total",
			Help: "Total number of snapshot refresh runs",
		},
		[]string{"result"},
	)

	// SnapshotArticles reports the article count of the last successful snapshot
	SnapshotArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_articles",
			Help: "Number of articles stored by the last snapshot",
		},
	)

	// SnapshotDuration measures the duration of a whole refresh run
	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_duration_seconds",
			Help:    "Snapshot refresh run duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// SnapshotLastSuccess is the unix time of the last successful refresh
	SnapshotLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful snapshot refresh",
		},
	)

	// SnapshotPrunedTotal counts stored articles removed by retention
	SnapshotPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_pruned_articles_total",
			Help: "Total number of stored articles removed by retention",
		},
	)

	// ConfigFallbacksTotal counts environment values replaced by their defaults
	ConfigFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_fallbacks_total",
			Help: "Total number of invalid configuration values replaced by defaults",
		},
		[]string{"field"},
	)

	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// CircuitBreakerState reports each breaker's state: 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)
