package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/handler/http/requestid"
	"news-aggregator/internal/observability/logging"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	var ctxLogger *slog.Logger

	h := requestid.Middleware(Logging(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/articles?limit=5", nil)
	req.Header.Set(requestid.Header, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/articles", entry["path"])
	assert.Equal(t, "limit=5", entry["query"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
	assert.NotNil(t, ctxLogger)
	assert.NotSame(t, slog.Default(), ctxLogger)
}

func TestLogging_ServerErrorsAreWarnings(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(jsonLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("source adapter exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "source adapter exploded")
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(jsonLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/articles/search?q=go", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	h := rl.Limit(okHandler())

	var codes []int
	for range 5 {
		codes = append(codes, hit(h, "192.0.2.1:1234"))
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:2000"))
	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.2:1000"))
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:1"))

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1"))
}

func TestRateLimiter_RejectionBody(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	h := rl.Limit(okHandler())
	hit(h, "192.0.2.9:1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	clock := time.Now()
	rl.now = func() time.Time { return clock }
	h := rl.Limit(okHandler())

	hit(h, "192.0.2.1:1")
	hit(h, "192.0.2.2:1")
	require.Equal(t, 2, rl.Clients())

	clock = clock.Add(time.Hour)
	hit(h, "192.0.2.3:1")
	assert.Equal(t, 1, rl.Clients())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(60, 10)
	h := rl.Limit(okHandler())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if hit(h, "198.51.100.7:80") == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.5:4321", nil, "203.0.113.5"},
		{"remote addr without port", "203.0.113.5", nil, "203.0.113.5"},
		{"forwarded for first hop", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"invalid forwarded falls through", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
