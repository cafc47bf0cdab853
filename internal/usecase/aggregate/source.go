package aggregate

import (
	"context"
	"time"

	"news-aggregator/internal/domain/entity"
)

// HealthProbeTimeout bounds a single source availability probe.
const HealthProbeTimeout = 5 * time.Second

// FetchQuery selects a page of the latest articles, optionally restricted to a category.
type FetchQuery struct {
	Category string
	Limit    int
	Offset   int
}

// Source is the capability contract every news provider adapter satisfies.
//
// FetchArticles and SearchArticles return an error when the call as a whole failed;
// an adapter must not report success with partial data in that case. Malformed items
// inside an otherwise valid response are dropped by the adapter, not reported.
//
// IsAvailable never fails: errors and timeouts degrade to false.
type Source interface {
	Name() string
	FetchArticles(ctx context.Context, q FetchQuery) ([]*entity.Article, error)
	SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error)
	Categories(ctx context.Context) ([]string, error)
	IsAvailable(ctx context.Context) bool
}
