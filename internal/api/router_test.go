package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/security"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	e, err := NewRouter(Config{Registerer: prometheus.NewRegistry()}, Deps{
		Log:    zerolog.Nop(),
		Table:  rbac.DefaultTable(),
		Tokens: security.NewJWTService("router-test-secret-router-test-secret", time.Hour),
		Hub:    ws.NewHub(zerolog.Nop()),
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return e
}

func TestNewRouter_RegistersRoutes(t *testing.T) {
	e, err := NewRouter(Config{Registerer: prometheus.NewRegistry(), EnableSwagger: true}, Deps{Log: zerolog.Nop(), Table: rbac.DefaultTable()})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	want := map[string]bool{
		"POST /api/auth/login":                         false,
		"POST /api/auth/reset-password":                false,
		"GET /api/users/permissions":                   false,
		"POST /api/words/:id/approve":                  false,
		"PUT /api/words/:id/translations/:tid":         false,
		"POST /api/words/:id/translations/:tid/verify": false,
		"DELETE /api/stories/:id/comments/:cid":        false,
		"PUT /api/notifications/:id/read":              false,
		"GET /health/ready":                            false,
		"GET /metrics":                                 false,
		"GET /swagger/*":                               false,
	}
	for _, r := range e.Routes() {
		if _, ok := want[r.Method+" "+r.Path]; ok {
			want[r.Method+" "+r.Path] = true
		}
	}
	for route, found := range want {
		if !found {
			t.Fatalf("route %s not registered", route)
		}
	}
}

func TestRouter_ProtectedRouteWithoutToken(t *testing.T) {
	h := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/words"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/ws"},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
