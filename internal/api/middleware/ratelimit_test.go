package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
)

// pollingEcho serves the routes clients poll every few seconds
func pollingEcho(rps float64, burst int) *echo.Echo {
	e := echo.New()
	e.Use(RateLimiterWithConfig(rps, burst, nil))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/cooldowns", ok)
	e.GET("/api/notifications/count", ok)
	return e
}

func poll(e *echo.Echo, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set(echo.HeaderXRealIP, ip)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Polling(t *testing.T) {
	type call struct {
		path string
		ip   string
		want int
	}
	tests := []struct {
		name  string
		rps   float64
		burst int
		calls []call
	}{
		{
			name: "single poll within limit", rps: 10, burst: 20,
			calls: []call{{"/api/cooldowns", "", http.StatusOK}},
		},
		{
			name: "limit is shared across routes", rps: 1, burst: 1,
			calls: []call{
				{"/api/cooldowns", "", http.StatusOK},
				{"/api/notifications/count", "", http.StatusTooManyRequests},
			},
		},
		{
			name: "clients are isolated by IP", rps: 1, burst: 1,
			calls: []call{
				{"/api/cooldowns", "192.168.1.1", http.StatusOK},
				{"/api/cooldowns", "192.168.1.2", http.StatusOK},
				{"/api/cooldowns", "192.168.1.1", http.StatusTooManyRequests},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := pollingEcho(tt.rps, tt.burst)
			for i, c := range tt.calls {
				rec := poll(e, c.path, c.ip)
				assert.Equal(t, c.want, rec.Code, "call %d to %s", i+1, c.path)
				if c.want == http.StatusTooManyRequests {
					assert.Equal(t, "60", rec.Header().Get(echo.HeaderRetryAfter))
				}
			}
		})
	}
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)

	// Get limiter for IP
	l1 := limiter.GetLimiter("192.168.1.1")
	assert.NotNil(t, l1)

	// Same IP should return same limiter (same pointer)
	l2 := limiter.GetLimiter("192.168.1.1")
	assert.Same(t, l1, l2)

	// Different IP should return different limiter (different pointer)
	l3 := limiter.GetLimiter("192.168.1.2")
	assert.NotSame(t, l1, l3)
}

func TestIPRateLimiter_CleanupOldEntries(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)

	l1 := limiter.GetLimiter("192.168.1.1")
	limiter.GetLimiter("192.168.1.2")
	assert.Equal(t, 2, limiter.Len())

	// Nothing is idle for an hour yet
	limiter.CleanupOldEntries(time.Hour)
	assert.Equal(t, 2, limiter.Len())
	assert.Same(t, l1, limiter.GetLimiter("192.168.1.1"))

	// A negative idle window makes every entry stale
	limiter.CleanupOldEntries(-time.Second)
	assert.Equal(t, 0, limiter.Len())
	assert.NotSame(t, l1, limiter.GetLimiter("192.168.1.1"))
}

func TestIPRateLimiter_RunCleanupStopsOnCancel(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		limiter.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestRateLimiter_LogsRejection(t *testing.T) {
	var buf bytes.Buffer
	secLog := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RateLimiterWithConfig(1, 1, secLog))
	e.POST("/api/inbound", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})

	for i := 0; i < 2; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/inbound", nil))
	}

	assert.Contains(t, buf.String(), "rate_limit_exceeded")
	assert.Contains(t, buf.String(), "/api/inbound")
}

func TestRateLimiter_BurstAllowed(t *testing.T) {
	e := pollingEcho(1, 5)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, poll(e, "/api/cooldowns", "").Code, "poll %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, poll(e, "/api/cooldowns", "").Code)
}
