// Package observability groups the ambient observability concerns of the aggregator.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus collectors for source calls, dedup and snapshots
//   - tracing: OpenTelemetry spans for HTTP requests and source fan-out
package observability
