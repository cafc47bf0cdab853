package article

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/usecase/aggregate"
)

// filterFunc narrows the merged pool. It returns a client error for bad parameters.
type filterFunc func(r *http.Request, pool []*entity.Article) ([]*entity.Article, error)

// serveFiltered fetches the latest PoolSize merged articles (optionally within
// ?category=), applies f and serves one page of the result.
func serveFiltered(d Deps, w http.ResponseWriter, r *http.Request, f filterFunc) {
	ctx := r.Context()

	params, err := pagination.ParseQueryParams(r, d.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	pool, err := d.Svc.FetchArticles(ctx, aggregate.FetchQuery{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    d.PoolSize,
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to fetch article pool", "error", err)
		respond.SafeError(w, statusFor(ctx, err), err)
		return
	}

	filtered, err := f(r, pool)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(
		pagination.Slice(filtered, params.Offset, params.Limit), params))
}

// MostRepeatedHandler serves GET /articles/most-repeated?min_sources=.
// min_sources defaults to 2; results are ordered by source count descending.
type MostRepeatedHandler struct {
	Deps
}

func (h MostRepeatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h.Deps, w, r, func(r *http.Request, pool []*entity.Article) ([]*entity.Article, error) {
		minSources, err := intParam(r, "min_sources", aggregate.DefaultMinSources)
		if err != nil {
			return nil, err
		}
		return aggregate.MostRepeated(pool, minSources), nil
	})
}

// UniqueHandler serves GET /articles/unique: stories reported by a single source.
type UniqueHandler struct {
	Deps
}

func (h UniqueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h.Deps, w, r, func(_ *http.Request, pool []*entity.Article) ([]*entity.Article, error) {
		return aggregate.UniqueArticles(pool), nil
	})
}

// BySourceHandler serves GET /articles/by-source?source=.
type BySourceHandler struct {
	Deps
}

func (h BySourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h.Deps, w, r, func(r *http.Request, pool []*entity.Article) ([]*entity.Article, error) {
		source := strings.TrimSpace(r.URL.Query().Get("source"))
		if source == "" {
			return nil, errors.New("invalid query parameter: source is required")
		}
		return aggregate.FromSource(pool, source), nil
	})
}

// BySourceCountHandler serves GET /articles/by-source-count?min=&max=.
// min defaults to 1; a missing or zero max means no upper bound.
type BySourceCountHandler struct {
	Deps
}

func (h BySourceCountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h.Deps, w, r, func(r *http.Request, pool []*entity.Article) ([]*entity.Article, error) {
		minSources, err := intParam(r, "min", 1)
		if err != nil {
			return nil, err
		}
		maxSources, err := intParam(r, "max", 0)
		if err != nil {
			return nil, err
		}
		if maxSources > 0 && maxSources < minSources {
			return nil, fmt.Errorf("invalid query parameter: max must be at least min (%d)", minSources)
		}
		return aggregate.BySourceCount(pool, minSources, maxSources), nil
	})
}
