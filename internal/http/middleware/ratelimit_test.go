package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	base := time.Now()
	now := base
	limiter := &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   3,
		window:  time.Minute,
		now:     func() time.Time { return now },
	}

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(context.Background(), "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed, got %v / %v", i+1, ok, err)
		}
	}
	if ok, _ := limiter.Allow(context.Background(), "1.2.3.4"); ok {
		t.Fatal("fourth request in window should be rejected")
	}

	// A different key keeps its own window.
	if ok, _ := limiter.Allow(context.Background(), "5.6.7.8"); !ok {
		t.Fatal("other key should be allowed")
	}

	// Counter resets after the window passes.
	now = base.Add(61 * time.Second)
	if ok, _ := limiter.Allow(context.Background(), "1.2.3.4"); !ok {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestMemoryLimiterEvictsStaleWindows(t *testing.T) {
	base := time.Now()
	now := base
	limiter := &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   3,
		window:  time.Minute,
		now:     func() time.Time { return now },
	}

	if ok, _ := limiter.Allow(context.Background(), "1.2.3.4"); !ok {
		t.Fatal("first request should be allowed")
	}

	// Long-idle windows are dropped during later calls; no background
	// goroutine is involved.
	now = base.Add(3 * time.Minute)
	if ok, _ := limiter.Allow(context.Background(), "5.6.7.8"); !ok {
		t.Fatal("other key should be allowed")
	}

	limiter.mu.Lock()
	_, stale := limiter.windows["1.2.3.4"]
	size := len(limiter.windows)
	limiter.mu.Unlock()
	if stale {
		t.Error("expired window should have been evicted")
	}
	if size != 1 {
		t.Errorf("expected 1 live window, got %d", size)
	}
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLimiter(client, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(context.Background(), "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed, got %v / %v", i+1, ok, err)
		}
	}
	if ok, _ := limiter.Allow(context.Background(), "1.2.3.4"); ok {
		t.Fatal("third request in window should be rejected")
	}

	// Window expiry in Redis clears the counter.
	mr.FastForward(61 * time.Second)
	if ok, err := limiter.Allow(context.Background(), "1.2.3.4"); err != nil || !ok {
		t.Fatalf("request after expiry should be allowed, got %v / %v", ok, err)
	}
}

func TestRateLimitMiddlewareRejects(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisLimiter(client, 1, time.Minute)

	handler := RateLimit(limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/buyers", nil)
	req.Header.Set("X-Real-Ip", "9.9.9.9")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	handler := RateLimit(failingLimiter{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/buyers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("limiter errors should fail open, got %d", rec.Code)
	}
}
