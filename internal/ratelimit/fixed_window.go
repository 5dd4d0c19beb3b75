package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter and returns it together
// with the window's remaining lifetime in milliseconds.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

const (
	defaultPrefix = "verse:ratelimit"
	redisTimeout  = 2 * time.Second
)

var (
	ErrInvalidQuota  = errors.New("rate limiter requires positive limit and window")
	ErrRedisRequired = errors.New("rate limiter redis address is required")
)

// Options configures a FixedWindowLimiter. URL takes precedence over Addr
// and accepts redis:// and rediss:// forms.
type Options struct {
	URL      string
	Addr     string
	Password string
	Prefix   string
	Limit    int
	Window   time.Duration
	// FailOpen admits requests when Redis is unreachable.
	FailOpen bool
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Count      int64
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindowLimiter limits requests per key in a fixed time window shared
// through Redis, so every replica counts against the same quota.
type FixedWindowLimiter struct {
	limit    int
	window   time.Duration
	failOpen bool

	redisClient *redis.Client
	redisPrefix string
}

// NewRedisFixedWindowLimiter creates a Redis-backed distributed limiter.
func NewRedisFixedWindowLimiter(opts Options) (*FixedWindowLimiter, error) {
	if opts.Limit <= 0 || opts.Window <= 0 {
		return nil, ErrInvalidQuota
	}
	redisOpts, err := redisOptions(opts)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &FixedWindowLimiter{
		limit:       opts.Limit,
		window:      opts.Window,
		failOpen:    opts.FailOpen,
		redisClient: redis.NewClient(redisOpts),
		redisPrefix: prefix,
	}, nil
}

func redisOptions(opts Options) (*redis.Options, error) {
	if raw := strings.TrimSpace(opts.URL); raw != "" {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if parsed.Password == "" {
			parsed.Password = opts.Password
		}
		return parsed, nil
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, ErrRedisRequired
	}
	return &redis.Options{Addr: addr, Password: opts.Password}, nil
}

// Limit returns the number of requests admitted per window.
func (l *FixedWindowLimiter) Limit() int { return l.limit }

// Window returns the window length.
func (l *FixedWindowLimiter) Window() time.Duration { return l.window }

// Allow counts one request for key. On Redis failures it returns the
// error together with a decision that fails closed unless FailOpen is set.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l == nil {
		return Decision{}, errors.New("nil rate limiter")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	now := time.Now().UTC().UnixMilli()
	windowSlot := now / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.redisPrefix, key, windowSlot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	res, err := fixedWindowScript.Run(ctx, l.redisClient, []string{redisKey}, windowMs).Int64Slice()
	if err != nil || len(res) != 2 {
		if err == nil {
			err = fmt.Errorf("unexpected script reply %v", res)
		}
		return Decision{Allowed: l.failOpen, RetryAfter: l.window}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if ttl <= 0 {
		ttl = time.Duration(windowMs-now%windowMs) * time.Millisecond
	}
	d := Decision{Allowed: count <= int64(l.limit), Count: count, RetryAfter: ttl}
	if remaining := int64(l.limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	return d, nil
}

// Ping checks the Redis connection.
func (l *FixedWindowLimiter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return l.redisClient.Ping(ctx).Err()
}

// Close releases the Redis client.
func (l *FixedWindowLimiter) Close() error {
	return l.redisClient.Close()
}
