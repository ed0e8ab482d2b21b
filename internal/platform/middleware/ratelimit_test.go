package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newLimitedEcho(cfg RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.Use(RateLimit(cfg))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/rooms", ok)
	e.GET("/health", ok)
	e.POST("/patients", ok)
	return e
}

func send(e *echo.Echo, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":5000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_WithinBurst(t *testing.T) {
	e := newLimitedEcho(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	for i := 0; i < 5; i++ {
		rec := send(e, http.MethodGet, "/rooms", "10.0.0.1")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	e := newLimitedEcho(RateLimitConfig{RequestsPerSecond: 0.5, BurstSize: 2})

	for i := 0; i < 2; i++ {
		if rec := send(e, http.MethodPost, "/patients", "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := send(e, http.MethodPost, "/patients", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After 2 at half a request per second, got %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("expected X-RateLimit-Remaining 0, got %q", got)
	}
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	e := newLimitedEcho(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	if rec := send(e, http.MethodGet, "/rooms", "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("client a first request: expected 200, got %d", rec.Code)
	}
	if rec := send(e, http.MethodGet, "/rooms", "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("client a second request: expected 429, got %d", rec.Code)
	}
	if rec := send(e, http.MethodGet, "/rooms", "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("client b first request: expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_Skipper(t *testing.T) {
	e := newLimitedEcho(RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	})

	for i := 0; i < 5; i++ {
		if rec := send(e, http.MethodGet, "/health", "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("health request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := send(e, http.MethodGet, "/rooms", "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("skipped requests must not use the budget, got %d", rec.Code)
	}
}

func TestRetryAfter(t *testing.T) {
	for _, tc := range []struct {
		rps  float64
		want int
	}{
		{100, 1},
		{1, 1},
		{0.5, 2},
		{0.3, 4},
		{0, 1},
	} {
		if got := retryAfter(tc.rps); got != tc.want {
			t.Errorf("retryAfter(%v) = %d, want %d", tc.rps, got, tc.want)
		}
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 || cfg.BurstSize != 200 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
