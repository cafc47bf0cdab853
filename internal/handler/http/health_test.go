package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	return rec.Code, resp
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, resp := serveHealth(t, &HealthHandler{Sources: []string{"Feed"}, Version: "1.2.3"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "not configured", resp.Checks["database"].Message)
	assert.Equal(t, statusHealthy, resp.Checks["sources"].Status)
}

func TestHealthHandler_NoSources(t *testing.T) {
	code, resp := serveHealth(t, &HealthHandler{})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusUnhealthy, resp.Status)
	assert.Equal(t, "no sources configured", resp.Checks["sources"].Message)
}

func TestHealthHandler_DatabaseHealthy(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(10)
	mock.ExpectPing()

	code, resp := serveHealth(t, &HealthHandler{DB: db, Sources: []string{"Feed"}})

	assert.Equal(t, http.StatusOK, code)
	check := resp.Checks["database"]
	assert.Equal(t, statusHealthy, check.Status)
	assert.EqualValues(t, 10, check.Details["max_open_connections"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_DatabaseUnlimitedPoolIsDegraded(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	code, resp := serveHealth(t, &HealthHandler{DB: db, Sources: []string{"Feed"}})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusDegraded, resp.Checks["database"].Status)
	assert.Equal(t, statusHealthy, resp.Status)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("dial postgres://app:secret@db:5432/news: refused"))

	code, resp := serveHealth(t, &HealthHandler{DB: db, Sources: []string{"Feed"}})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["database"].Message, "app:****@db")
	assert.NotContains(t, resp.Checks["database"].Message, "secret")
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
