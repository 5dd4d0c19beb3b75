package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newLimiter(t *testing.T, opts Options) *FixedWindowLimiter {
	t.Helper()
	limiter, err := NewRedisFixedWindowLimiter(opts)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter
}

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newLimiter(t, Options{Addr: redis.Addr(), Prefix: "test:ratelimit", Limit: 2, Window: 30 * time.Second})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		d, err := limiter.Allow(ctx, "ip-1")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d should pass: %+v %v", i, d, err)
		}
		if d.Remaining != 2-i {
			t.Fatalf("remaining = %d after %d requests", d.Remaining, i)
		}
	}
	d, err := limiter.Allow(ctx, "ip-1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatalf("third request should be blocked")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 30*time.Second {
		t.Fatalf("retry after = %v", d.RetryAfter)
	}
	if d, _ := limiter.Allow(ctx, "ip-2"); !d.Allowed {
		t.Fatalf("other keys keep their own quota")
	}
}

func TestFixedWindowLimiterFromURL(t *testing.T) {
	redis := miniredis.RunT(t)
	redis.RequireAuth("s3cret")
	limiter := newLimiter(t, Options{URL: "redis://" + redis.Addr() + "/0", Password: "s3cret", Limit: 1, Window: time.Minute})
	if err := limiter.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if d, err := limiter.Allow(context.Background(), "ip-1"); err != nil || !d.Allowed {
		t.Fatalf("first request should pass: %+v %v", d, err)
	}
	if limiter.Limit() != 1 || limiter.Window() != time.Minute {
		t.Fatalf("unexpected quota %d/%v", limiter.Limit(), limiter.Window())
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newLimiter(t, Options{Addr: redis.Addr(), Limit: 1, Window: time.Second})
	redis.Close()
	d, err := limiter.Allow(context.Background(), "ip-1")
	if err == nil || d.Allowed {
		t.Fatalf("limiter should fail closed on redis errors: %+v %v", d, err)
	}
}

func TestFixedWindowLimiterRedisFailOpen(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newLimiter(t, Options{Addr: redis.Addr(), Limit: 1, Window: time.Second, FailOpen: true})
	redis.Close()
	d, err := limiter.Allow(context.Background(), "ip-1")
	if err == nil || !d.Allowed {
		t.Fatalf("limiter should fail open when configured: %+v %v", d, err)
	}
}

func TestFixedWindowLimiterValidation(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter(Options{Limit: 1, Window: time.Second}); !errors.Is(err, ErrRedisRequired) {
		t.Fatalf("expected ErrRedisRequired, got %v", err)
	}
	if _, err := NewRedisFixedWindowLimiter(Options{Addr: "localhost:6379", Window: time.Second}); !errors.Is(err, ErrInvalidQuota) {
		t.Fatalf("expected ErrInvalidQuota, got %v", err)
	}
	if _, err := NewRedisFixedWindowLimiter(Options{URL: "http://nope", Limit: 1, Window: time.Second}); err == nil {
		t.Fatalf("expected url parse error")
	}
}
