package httptransport

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionhandler "creditboard/internal/dashboard/handler"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/orchestrator"
	"creditboard/internal/dashboard/render"
	"creditboard/internal/dashboard/sessions"
	"creditboard/internal/platform/health"
	"creditboard/pkg/platform/middleware/request"
)

type emptySource struct{}

func (emptySource) ListCustomers(context.Context) ([]models.CustomerSummary, error) {
	return nil, nil
}

func (emptySource) FetchDashboard(context.Context, models.CustomerID, models.DashboardQuery) (models.DashboardPayload, error) {
	return models.DashboardPayload{}, errors.New("unavailable")
}

func newRouter(t *testing.T, origins ...string) (http.Handler, *prometheus.Registry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	registry := sessions.New(func(id string, store *render.FrameStore) *orchestrator.Orchestrator {
		return orchestrator.New(emptySource{}, store, orchestrator.WithLogger(logger))
	})
	return NewRouter(RouterConfig{
		Logger:         logger,
		Sessions:       sessionhandler.New(registry, sessionhandler.WithLogger(logger)),
		Health:         health.New("test"),
		Gatherer:       reg,
		RequestMetrics: request.NewMetrics(reg),
		AllowedOrigins: origins,
	}), reg
}

func TestRouterServesSessionsHealthAndMetrics(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), sessionhandler.SessionCookie+"=")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `creditboard_http_request_duration_seconds_count{kind="call",method="GET",route="/session",status="2xx"} 1`)
}

func TestRouterRejectsNonJSONBodies(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/session/select", strings.NewReader("customer_id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouterCompressesResponses(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestRouterCORS(t *testing.T) {
	router, _ := newRouter(t, "http://console.test")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "http://console.test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://console.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
