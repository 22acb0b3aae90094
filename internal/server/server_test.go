package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/handlers"
)

func TestShouldSkipJWT_PublicPaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{path: "/ping", want: true},
		{path: "/health", want: true},
		{path: "/health/checks", want: true},
		{path: "/api/v1/auth/login", want: true},
		{path: "/api/v1/webhook/telegram", want: true},
		{path: "/api/v1/auth/me", want: false},
		{path: "/api/v1/clients", want: false},
		{path: "/api/v1/webhook", want: false},
		{path: "/webhook/telegram", want: false},
	}

	for _, tc := range cases {
		got := shouldSkipJWT(tc.path)
		if got != tc.want {
			t.Fatalf("path=%q want=%v got=%v", tc.path, tc.want, got)
		}
	}
}

func TestServerRequiresTokenOutsidePublicPaths(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, "", "secret", handlers.NewPingHandler(nil, nil), routeFunc(func(e *echo.Echo) {
		e.GET(handlers.APIPrefix+"/clients", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	}))

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, handlers.APIPrefix+"/clients", nil))
	if rec.Code == http.StatusOK {
		t.Fatalf("clients without token must be rejected")
	}
}

type routeFunc func(e *echo.Echo)

func (f routeFunc) Register(e *echo.Echo) { f(e) }
