package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CopyFox/internal/pkg/billing"
)

func newTestApp(t *testing.T, rateLimit int, dev bool) *fiber.App {
	t.Helper()
	repo := billing.NewMemoryRepository()
	app := fiber.New()
	InstallRouter(app, Dependencies{
		Billing:     billing.NewService(repo, nil, billing.NewInMemoryMeter()),
		KeyStore:    repo,
		RateLimit:   rateLimit,
		MetricsUser: "metrics",
		MetricsPass: "secret",
		Dev:         dev,
	})
	return app
}

func TestMetricsRequireBasicAuth(t *testing.T) {
	app := newTestApp(t, 10, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("metrics", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetricsNotMountedWithoutPassword(t *testing.T) {
	repo := billing.NewMemoryRepository()
	app := fiber.New()
	InstallRouter(app, Dependencies{
		Billing:     billing.NewService(repo, nil, billing.NewInMemoryMeter()),
		KeyStore:    repo,
		MetricsUser: "admin",
	})

	for _, path := range []string{"/metrics", "/monitor"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRateLimit(t *testing.T) {
	app := newTestApp(t, 2, false)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "system routes are not rate limited")
}

func TestDevRoutesOnlyInDev(t *testing.T) {
	prod := newTestApp(t, 10, false)
	resp, err := prod.Test(httptest.NewRequest(http.MethodPut, "/api/v1/dev/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	dev := newTestApp(t, 10, true)
	resp, err = dev.Test(httptest.NewRequest(http.MethodPut, "/api/v1/dev/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
