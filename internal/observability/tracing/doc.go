// Package tracing provides OpenTelemetry integration.
//
// Setup installs the SDK tracer provider at process start. Middleware opens a server span
// per HTTP request, and the aggregation use case opens one child span per source call,
// which makes a slow or failing provider visible in a single trace.
package tracing
