package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records an HTTP request with its status and duration.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordSourceCall records the outcome of one call to a news source.
// The article count is only recorded for successful calls.
func RecordSourceCall(source, operation string, duration time.Duration, articles int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SourceRequestsTotal.WithLabelValues(source, operation, result).Inc()
	SourceRequestDuration.WithLabelValues(source, operation).Observe(duration.Seconds())
	if err == nil && articles > 0 {
		ArticlesFetchedTotal.WithLabelValues(source).Add(float64(articles))
	}
}

// RecordSkippedItems records provider items that were dropped for missing required fields.
func RecordSkippedItems(source string, count int) {
	if count > 0 {
		ArticlesSkippedTotal.WithLabelValues(source).Add(float64(count))
	}
}

// RecordDedup records how many input articles were absorbed by a deduplication pass.
func RecordDedup(strategy string, before, after int) {
	if merged := before - after; merged > 0 {
		DedupMergedTotal.WithLabelValues(strategy).Add(float64(merged))
	}
}

// RecordAggregation records the total duration of an aggregation call.
func RecordAggregation(operation string, duration time.Duration) {
	AggregationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSourceHealth records the result of a health probe.
func RecordSourceHealth(source string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	SourceAvailable.WithLabelValues(source).Set(v)
}

// RecordSnapshotRun records a snapshot refresh. Articles is ignored on failure.
func RecordSnapshotRun(success bool, articles int, duration time.Duration) {
	SnapshotDuration.Observe(duration.Seconds())
	if !success {
		SnapshotRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	SnapshotRunsTotal.WithLabelValues("success").Inc()
	SnapshotArticles.Set(float64(articles))
	SnapshotLastSuccess.SetToCurrentTime()
}

// RecordSnapshotPruned records articles removed by retention.
func RecordSnapshotPruned(count int64) {
	if count > 0 {
		SnapshotPrunedTotal.Add(float64(count))
	}
}

// RecordConfigFallback records that field fell back to its default value.
func RecordConfigFallback(field string) {
	ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "save_snapshot", "latest_snapshot").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCircuitState records the state of the named circuit breaker.
func RecordCircuitState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
