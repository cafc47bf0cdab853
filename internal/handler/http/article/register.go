// Package article serves the aggregated article listings: latest, search and the
// provenance filters (most repeated, unique, by source, by source count).
package article

import (
	"context"
	"log/slog"
	"net/http"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
)

// DefaultPoolSize is how many merged articles the filter endpoints draw from.
const DefaultPoolSize = 100

// Service is the aggregation use case behind the article endpoints.
type Service interface {
	FetchArticles(ctx context.Context, q aggregate.FetchQuery) ([]*entity.Article, error)
	SearchArticles(ctx context.Context, query string, limit, offset int) ([]*entity.Article, error)
}

// Deps bundles what every article handler needs.
type Deps struct {
	Svc           Service
	PaginationCfg pagination.Config
	// PoolSize bounds the merged set the filter endpoints work on. Zero means
	// DefaultPoolSize.
	PoolSize int
	Logger   *slog.Logger
}

// Register mounts the article routes on mux. search may be wrapped (for example with a
// rate limiter) through wrapSearch; nil leaves it as is.
func Register(mux *http.ServeMux, d Deps, wrapSearch func(http.Handler) http.Handler) {
	if d.PoolSize <= 0 {
		d.PoolSize = DefaultPoolSize
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	var search http.Handler = SearchHandler{d}
	if wrapSearch != nil {
		search = wrapSearch(search)
	}

	mux.Handle("GET /articles", ListHandler{d})
	mux.Handle("GET /articles/search", search)
	mux.Handle("GET /articles/most-repeated", MostRepeatedHandler{d})
	mux.Handle("GET /articles/unique", UniqueHandler{d})
	mux.Handle("GET /articles/by-source", BySourceHandler{d})
	mux.Handle("GET /articles/by-source-count", BySourceCountHandler{d})
}
