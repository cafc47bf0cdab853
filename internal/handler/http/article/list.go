package article

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/usecase/aggregate"
)

// ListHandler serves GET /articles?category=&limit=&offset=.
type ListHandler struct {
	Deps
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	articles, err := h.Svc.FetchArticles(ctx, aggregate.FetchQuery{
		Category: category,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		logger.Error("failed to fetch articles", "error", err, "category", category)
		respond.SafeError(w, statusFor(ctx, err), err)
		return
	}

	logger.Debug("articles served",
		"category", category,
		"limit", params.Limit,
		"offset", params.Offset,
		"returned", len(articles))
	respond.JSON(w, http.StatusOK, pagination.NewResponse(articles, params))
}

// statusFor maps a use case error to a response status. A request whose deadline
// expired reports 504; anything else is a server error.
func statusFor(ctx context.Context, err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
