// Package snapshot serves the articles persisted by the refresher. The routes are only
// mounted when a snapshot database is configured.
package snapshot

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/usecase/aggregate"
)

// Register mounts the snapshot routes on mux.
func Register(mux *http.ServeMux, repo repository.SnapshotRepository, cfg pagination.Config) {
	mux.Handle("GET /snapshots/latest", LatestHandler{Repo: repo, PaginationCfg: cfg})
	mux.Handle("GET /snapshots/most-repeated", MostRepeatedHandler{Repo: repo, PaginationCfg: cfg})
}

// LatestHandler serves GET /snapshots/latest?limit=, newest first.
type LatestHandler struct {
	Repo          repository.SnapshotRepository
	PaginationCfg pagination.Config
}

func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	articles, err := h.Repo.Latest(r.Context(), params.Limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load latest snapshot", "error", err)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(articles, pagination.Params{Limit: params.Limit}))
}

// MostRepeatedHandler serves GET /snapshots/most-repeated?min_sources=&limit=.
type MostRepeatedHandler struct {
	Repo          repository.SnapshotRepository
	PaginationCfg pagination.Config
}

func (h MostRepeatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	minSources := aggregate.DefaultMinSources
	if raw := strings.TrimSpace(r.URL.Query().Get("min_sources")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respond.SafeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid query parameter: min_sources must be a positive integer"))
			return
		}
		minSources = v
	}

	articles, err := h.Repo.MostRepeated(r.Context(), minSources, params.Limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load most repeated snapshot articles", "error", err)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(articles, pagination.Params{Limit: params.Limit}))
}
