//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spendlog/spendlog/internal/cache"
	"github.com/spendlog/spendlog/internal/testutil"
)

// TestIntegrationRateLimitUser_Concurrency checks the Redis bucket under
// concurrent load through the middleware.
func TestIntegrationRateLimitUser_Concurrency(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer c.Close()
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	const burst = 5
	handler := RateLimitUser(RateLimitConfig{
		Logger:        discardLogger(),
		Limiter:       c,
		UserEnabled:   true,
		UserPerMinute: 1,
		UserBurst:     burst,
	})(okHandler)

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, userRequest("concurrent-user"))
				switch rec.Code {
				case http.StatusOK:
					atomic.AddInt64(&allowed, 1)
				case http.StatusTooManyRequests:
					atomic.AddInt64(&rejected, 1)
				default:
					t.Errorf("unexpected status %d", rec.Code)
				}
			}
		}()
	}
	wg.Wait()

	t.Logf("allowed=%d rejected=%d", allowed, rejected)
	if allowed > burst+1 {
		t.Errorf("allowed = %d, want at most %d", allowed, burst+1)
	}
	if rejected == 0 {
		t.Error("expected some requests to be rejected")
	}
}

func TestIntegrationRateLimitIP(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer c.Close()
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	handler := RateLimitIP(RateLimitConfig{
		Logger:      discardLogger(),
		Limiter:     c,
		IPEnabled:   true,
		IPPerSecond: 1,
		IPBurst:     2,
	})(okHandler)

	var codes []int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	// At most one refill can land while the loop runs.
	limited := 0
	for _, code := range codes {
		if code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited < 3 {
		t.Errorf("expected at least 3 limited requests, got %v", codes)
	}
}
