// Package source serves the source catalogue endpoints: configured sources, their
// availability and the categories they offer.
package source

import (
	"context"
	"net/http"
	"sort"
	"time"

	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
)

// Service is the subset of the aggregation use case these handlers need.
type Service interface {
	SourceNames() []string
	Categories(ctx context.Context) ([]string, error)
	CheckSourcesHealth(ctx context.Context) map[string]bool
}

// Register mounts the source routes on mux.
func Register(mux *http.ServeMux, svc Service, strategy string) {
	mux.Handle("GET /sources", ListHandler{Svc: svc, Strategy: strategy})
	mux.Handle("GET /sources/health", HealthHandler{Svc: svc})
	mux.Handle("GET /categories", CategoriesHandler{Svc: svc})
}

// ListResponse is the body of GET /sources.
type ListResponse struct {
	Sources       []string `json:"sources"`
	DedupStrategy string   `json:"dedupStrategy"`
}

// ListHandler serves GET /sources.
type ListHandler struct {
	Svc      Service
	Strategy string
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, ListResponse{
		Sources:       h.Svc.SourceNames(),
		DedupStrategy: h.Strategy,
	})
}

// HealthStatus is one entry of GET /sources/health.
type HealthStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// HealthResponse is the body of GET /sources/health.
type HealthResponse struct {
	Sources   []HealthStatus `json:"sources"`
	Available int            `json:"available"`
	Total     int            `json:"total"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// HealthHandler serves GET /sources/health. It always answers 200: an unavailable
// source is reported in the body, not as a failure of the endpoint.
type HealthHandler struct {
	Svc Service
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Svc.CheckSourcesHealth(r.Context())

	resp := HealthResponse{
		Sources:   make([]HealthStatus, 0, len(health)),
		Total:     len(health),
		CheckedAt: time.Now().UTC(),
	}
	for name, ok := range health {
		resp.Sources = append(resp.Sources, HealthStatus{Name: name, Available: ok})
		if ok {
			resp.Available++
		}
	}
	sort.Slice(resp.Sources, func(i, j int) bool { return resp.Sources[i].Name < resp.Sources[j].Name })

	respond.JSON(w, http.StatusOK, resp)
}

// CategoriesHandler serves GET /categories.
type CategoriesHandler struct {
	Svc Service
}

func (h CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Svc.Categories(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list categories", "error", err)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	respond.JSON(w, http.StatusOK, map[string][]string{"categories": cats})
}
