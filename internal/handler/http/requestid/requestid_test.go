package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))
}

func serve(t *testing.T, header string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware_PropagatesClientID(t *testing.T) {
	seen, rec := serve(t, "client-req-42")

	assert.Equal(t, "client-req-42", seen)
	assert.Equal(t, "client-req-42", rec.Header().Get(Header))
}

func TestMiddleware_GeneratesID(t *testing.T) {
	seen, rec := serve(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(Header))
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("x", maxLength+1)} {
		seen, _ := serve(t, bad)
		assert.NotEqual(t, bad, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "id for %q", bad)
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	first, _ := serve(t, "")
	second, _ := serve(t, "")
	assert.NotEqual(t, first, second)
}
