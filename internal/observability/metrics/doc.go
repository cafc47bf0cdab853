// Package metrics exposes the Prometheus collectors of the aggregator.
//
// Collectors are registered with the default registry through promauto and served by
// promhttp.Handler on /metrics. Recorder helpers (RecordSourceCall, RecordDedup, ...)
// keep label handling in one place so call sites stay one line long.
package metrics
