package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"zoblogs/internal/controllers"
	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
	"zoblogs/internal/structures"

	"github.com/stretchr/testify/assert"
)

type appTestRegistry struct {
	registry.RegistryInterface
}

func (m *appTestRegistry) GetPlatformCoins(_ context.Context) ([]models.PlatformCoin, error) {
	return []models.PlatformCoin{{Address: "0x1"}}, nil
}

func newAppTestHandler(t *testing.T) http.Handler {
	t.Helper()
	_, router := newRouteTestMux(t)
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: false}}
	return newHandler(controllers.NewHealthController(&appTestRegistry{}), conf, router, providers.NewMetricsProvider(conf))
}

func TestNewHandler_HealthServesGet(t *testing.T) {
	h := newAppTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"registry_coins":1`)
}

func TestNewHandler_HealthWrongMethodMatchesApiRoutes(t *testing.T) {
	h := newAppTestHandler(t)

	health := httptest.NewRecorder()
	h.ServeHTTP(health, httptest.NewRequest(http.MethodPost, "/health", nil))
	api := httptest.NewRecorder()
	h.ServeHTTP(api, httptest.NewRequest(http.MethodPost, "/discover", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, health.Code)
	assert.Equal(t, http.MethodGet, health.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, health.Body.String())
	assert.Equal(t, api.Body.String(), health.Body.String())
	assert.Equal(t, api.Header().Get("Content-Type"), health.Header().Get("Content-Type"))
}

func TestNewHandler_MetricsAbsentWhenDisabled(t *testing.T) {
	h := newAppTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
