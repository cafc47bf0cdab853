// Package resilience provides fault tolerance patterns for calls to news providers.
//
// Subpackages:
//   - circuitbreaker: sony/gobreaker wrapper with per-provider presets
//   - retry: exponential backoff with jitter for transient network and HTTP failures
//
// Adapters compose both: every attempt runs through the breaker and the breaker call is
// retried with backoff.
//
//	articles, err := retry.Do(ctx, retry.FeedFetchConfig(), func(ctx context.Context) ([]*entity.Article, error) {
//	    return circuitbreaker.Execute(cb, func() ([]*entity.Article, error) {
//	        return fetchOnce(ctx)
//	    })
//	})
package resilience
