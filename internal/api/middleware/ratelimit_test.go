package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/db/redis"
)

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mw := RateLimit(redis.NewFixedWindowLimiter(client), "login", 2, time.Minute, zerolog.Nop())
	h := mw(okHandler)

	for i := 0; i < 2; i++ {
		c, rec := newContext(http.MethodPost, "/", nil)
		if err := h(c); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("missing limit header")
		}
	}
	c, rec := newContext(http.MethodPost, "/", nil)
	if err := h(c); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	h := RateLimit(redis.NewFixedWindowLimiter(client), "login", 1, time.Minute, zerolog.Nop())(okHandler)
	for i := 0; i < 3; i++ {
		c, _ := newContext(http.MethodPost, "/", nil)
		if err := h(c); err != nil {
			t.Fatalf("expected fail open, got %v", err)
		}
	}
}

func TestGlobalRateLimit(t *testing.T) {
	e := newEcho()
	e.Use(GlobalRateLimit(1, time.Minute))
	e.GET("/", okHandler)

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
