package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/auth-service/internal/infrastructure/redis"
	"github.com/campuskit/auth-service/internal/logger"
	"github.com/campuskit/auth-service/internal/transport/http/middleware"
	"github.com/campuskit/auth-service/internal/transport/http/response"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitFixedWindow(t *testing.T) {
	logger.InitWithWriter(io.Discard)

	mr := miniredis.RunT(t)
	cli := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cli.Close() })

	limiter := redis.NewFixedWindowLimiter(cli)
	mw := middleware.RateLimitFixedWindow(limiter, middleware.FixedWindowConfig{
		RouteKey: "test.route",
		Limit:    2,
		Window:   time.Minute,
	}, response.WriteError)

	h := mw(okHandler())

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// two allowed, third denied for the same client
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")

	// a different client IP has its own budget
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestRateLimitFixedWindow_NilLimiterPassesThrough(t *testing.T) {
	logger.InitWithWriter(io.Discard)

	mw := middleware.RateLimitFixedWindow(nil, middleware.FixedWindowConfig{
		RouteKey: "test.route",
		Limit:    1,
		Window:   time.Minute,
	}, response.WriteError)
	h := mw(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitFixedWindow_LimiterErrorFailsOpen(t *testing.T) {
	logger.InitWithWriter(io.Discard)

	mr := miniredis.RunT(t)
	cli := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	limiter := redis.NewFixedWindowLimiter(cli)

	mw := middleware.RateLimitFixedWindow(limiter, middleware.FixedWindowConfig{
		RouteKey: "test.route",
		Limit:    1,
		Window:   time.Minute,
	}, response.WriteError)
	h := mw(okHandler())

	// Kill the backend; requests must still pass.
	mr.Close()
	_ = cli.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitFixedWindow_XForwardedFor(t *testing.T) {
	logger.InitWithWriter(io.Discard)

	mr := miniredis.RunT(t)
	cli := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cli.Close() })
	limiter := redis.NewFixedWindowLimiter(cli)

	mw := middleware.RateLimitFixedWindow(limiter, middleware.FixedWindowConfig{
		RouteKey: "test.route",
		Limit:    1,
		Window:   time.Minute,
	}, response.WriteError)
	h := mw(okHandler())

	do := func(xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.7, 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7").Code, "first XFF hop is the identity")
	assert.Equal(t, http.StatusOK, do("203.0.113.8").Code)
}
