package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// newRouterOnly wires the echo routes without a database. Handlers
// that touch s.db are not exercised here.
func newRouterOnly() *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		metrics: newMetrics(reg),
		limiter: newRateLimiter(authRate, authBurst),
	}
	s.setupEcho(reg)
	return s
}

func TestHealthEndpoint(t *testing.T) {
	s := newRouterOnly()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	s := newRouterOnly()

	// Generate one sample first
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "forum_http_requests_total") {
		t.Errorf("metrics body missing request counter")
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	s := newRouterOnly()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status for non-bearer scheme = %d, want 401", rec.Code)
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := newRateLimiter(rate.Limit(0.001), 2)

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("burst requests should be allowed")
	}
	if rl.allow("1.2.3.4") {
		t.Error("request beyond burst should be blocked")
	}
	// A different IP has its own bucket
	if !rl.allow("5.6.7.8") {
		t.Error("distinct IP should not share a bucket")
	}
}
