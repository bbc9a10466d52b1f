package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := httpRequestsTotal
	Init()
	require.Same(t, first, httpRequestsTotal)
}

func TestObserveStoreMutation(t *testing.T) {
	ObserveStoreMutation("delete", errors.New("boom"))
	ObserveStoreMutation("upsert", nil)

	body := scrape(t)
	require.Contains(t, body, `codex_store_mutations_total{kind="delete",result="error"}`)
	require.Contains(t, body, `codex_store_mutations_total{kind="upsert",result="ok"}`)
}

func TestObserveHTTPRequest(t *testing.T) {
	ObserveHTTPRequest(http.MethodDelete, "/*", http.StatusNotFound, 3*time.Millisecond)

	body := scrape(t)
	require.Contains(t, body, `codex_http_requests_total{code="404",method="DELETE"}`)
	require.Contains(t, body, `codex_http_request_duration_seconds_count{method="DELETE",route="/*"}`)
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/teapot", func(c echo.Context) error {
		return c.String(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	require.Contains(t, scrape(t), `codex_http_requests_total{code="418",method="GET"}`)
}

func TestMiddleware_PrefersHandlerRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.Any("/*", func(c echo.Context) error {
		if c.Request().URL.Path == "/edit/A1" {
			c.Set(RouteKey, "/edit/{sku}")
		}
		return c.NoContent(http.StatusNoContent)
	})

	for _, path := range []string{"/edit/A1", "/other"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, path, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	body := scrape(t)
	require.Contains(t, body, `codex_http_request_duration_seconds_count{method="PUT",route="/edit/{sku}"}`)
	require.Contains(t, body, `codex_http_request_duration_seconds_count{method="PUT",route="/*"}`)
}
