// Package newsapi implements a news source backed by a NewsAPI-compatible REST service.
//
// Latest articles come from the top-headlines endpoint, searches from the everything
// endpoint. Requests are rate limited, retried on transient failures and guarded by a
// circuit breaker.
package newsapi

import "errors"

// Sentinel errors for the NewsAPI adapter.
var (
	// ErrUpstream indicates that the provider answered with an error payload.
	ErrUpstream = errors.New("news api returned an error")

	// ErrMissingAPIKey indicates that the client was configured without an API key.
	ErrMissingAPIKey = errors.New("news api key is required")
)
