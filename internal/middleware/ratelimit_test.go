package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendlog/spendlog/internal/auth"
	"github.com/spendlog/spendlog/internal/cache"
	"github.com/spendlog/spendlog/internal/model"
)

// countingLimiter allows the first limit calls per key.
type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, seen: map[string]int{}}
}

func (l *countingLimiter) check(key string) (*cache.RateLimitResult, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.seen[key]++
	n := l.seen[key]
	return &cache.RateLimitResult{
		Allowed:    n <= l.limit,
		Remaining:  int64(max(l.limit-n, 0)),
		ResetAt:    time.Unix(1700000000, 0),
		RetryAfter: 30 * time.Second,
	}, nil
}

func (l *countingLimiter) CheckUserRateLimit(_ context.Context, userID string, _, _ int) (*cache.RateLimitResult, error) {
	return l.check("user:" + userID)
}

func (l *countingLimiter) CheckIPRateLimit(_ context.Context, ip string, _, _ int) (*cache.RateLimitResult, error) {
	return l.check("ip:" + ip)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func userRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/list", nil)
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), &model.Principal{UserID: userID}))
}

func TestRateLimitUser(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(2)
	handler := RateLimitUser(RateLimitConfig{
		Logger:        discardLogger(),
		Limiter:       limiter,
		UserEnabled:   true,
		UserPerMinute: 60,
		UserBurst:     2,
	})(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, userRequest("u1"))
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "60" {
			t.Errorf("request %d: X-RateLimit-Limit = %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "30" {
			t.Errorf("Retry-After = %q, want 30", rec.Header().Get("Retry-After"))
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, userRequest("u2"))
	if rec.Code != http.StatusOK {
		t.Errorf("other user: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitUser_DisabledAndFailOpen(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(0)
	disabled := RateLimitUser(RateLimitConfig{Logger: discardLogger(), Limiter: limiter})(okHandler)
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, userRequest("u1"))
	if rec.Code != http.StatusOK {
		t.Errorf("disabled: status = %d, want 200", rec.Code)
	}

	broken := &countingLimiter{err: errors.New("redis down")}
	failOpen := RateLimitUser(RateLimitConfig{Logger: discardLogger(), Limiter: broken, UserEnabled: true, UserPerMinute: 1})(okHandler)
	rec = httptest.NewRecorder()
	failOpen.ServeHTTP(rec, userRequest("u1"))
	if rec.Code != http.StatusOK {
		t.Errorf("limiter error: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	limiter := newCountingLimiter(1)
	handler := RateLimitIP(RateLimitConfig{
		Logger:      discardLogger(),
		Limiter:     limiter,
		IPEnabled:   true,
		IPPerSecond: 1,
		IPBurst:     1,
	})(okHandler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1:5000"); got != http.StatusOK {
		t.Errorf("first: status = %d", got)
	}
	if got := send("10.0.0.1:6000"); got != http.StatusTooManyRequests {
		t.Errorf("same IP, new port: status = %d, want 429", got)
	}
	if got := send("10.0.0.2:5000"); got != http.StatusOK {
		t.Errorf("other IP: status = %d", got)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr with port", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"remote addr without port", "192.0.2.1", nil, "192.0.2.1"},
		{"forwarded for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
