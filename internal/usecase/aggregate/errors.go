// Package aggregate implements the news aggregation use case.
//
// A Service fans out every fetch or search to all registered sources concurrently,
// isolates per-source failures, deduplicates the flattened results with the configured
// strategy, sorts them newest first and returns the requested page.
package aggregate

import "errors"

// Sentinel errors for aggregation use case operations.
var (
	// ErrNoSources indicates that the service was constructed without any source.
	ErrNoSources = errors.New("at least one news source is required")

	// ErrDuplicateSource indicates that two sources share the same name, which would make
	// provenance ambiguous.
	ErrDuplicateSource = errors.New("duplicate news source name")
)
