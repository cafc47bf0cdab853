package article

import (
	"errors"
	"net/http"
	"strings"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/utils/text"
)

// maxQueryLength bounds the search term, in characters, forwarded to every source.
const maxQueryLength = 200

// SearchHandler serves GET /articles/search?q=&limit=&offset=.
// A blank q is rejected with 400.
type SearchHandler struct {
	Deps
}

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid query parameter: q is required"))
		return
	}
	if text.CountRunes(q) > maxQueryLength {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid query parameter: q is too long"))
		return
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	articles, err := h.Svc.SearchArticles(ctx, q, params.Limit, params.Offset)
	if err != nil {
		logging.FromContext(ctx).Error("failed to search articles", "error", err)
		respond.SafeError(w, statusFor(ctx, err), err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(articles, params))
}
