// Package feed implements a news source backed by one or more RSS/Atom feeds.
// Feeds are fetched concurrently with retry and a per-URL circuit breaker, and parsed
// with the gofeed library. HTML in descriptions is reduced to plain text with goquery.
package feed

import "errors"

// Sentinel errors for the feed adapter.
var (
	// ErrAllFeedsFailed indicates that no configured feed URL could be fetched.
	ErrAllFeedsFailed = errors.New("all feeds failed")

	// ErrNoFeedURLs indicates that a source was configured without feed URLs.
	ErrNoFeedURLs = errors.New("at least one feed url is required")
)
