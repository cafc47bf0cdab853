package http

import (
	"errors"
	"net/http"

	"news-aggregator/internal/handler/http/respond"
)

const (
	maxPathLength  = 2048
	maxQueryLength = 4096
)

// InputValidation rejects oversized request lines before any source is contacted.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				respond.SafeError(w, http.StatusRequestURITooLong, errors.New("URI too long"))
				return
			}
			if len(r.URL.RawQuery) > maxQueryLength {
				respond.SafeError(w, http.StatusRequestURITooLong, errors.New("query string too long"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
