package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news-aggregator/internal/observability/metrics"
)

// unmatchedRoute labels requests no route pattern matched, keeping label cardinality
// bounded by the route table.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request count and latency per method, route and status.
//
// The route label is the ServeMux pattern that served the request, so it must wrap the
// mux directly: the pattern is read back from the same *http.Request after serving.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)

		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(r.Method, routeLabel(r), rec.status, time.Since(start))
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	// "GET /articles" -> "/articles"
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return strings.TrimSpace(path)
	}
	return r.Pattern
}
