package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a keyed caller may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Result describes one rate limit decision
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// fixedWindowScript counts requests per key in a window that starts on the first hit.
// Running it as one script keeps GET/INCR/EXPIRE atomic across server instances.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local current = redis.call('GET', key)
	if current == false then
		redis.call('SET', key, 1, 'EX', window)
		return {1, max_requests - 1, now + window}
	end

	current = tonumber(current)
	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		redis.call('EXPIRE', key, window)
		ttl = window
	end

	if current < max_requests then
		redis.call('INCR', key)
		return {1, max_requests - current - 1, now + ttl}
	end
	return {0, 0, now + ttl}
`)

// RedisLimiter is a fixed window limiter shared by every instance through Redis
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRedisLimiter allows maxRequests per window for each key under prefix
// e.g. NewRedisLimiter(client, "ratelimit:create", 10, time.Minute)
func NewRedisLimiter(client *redis.Client, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		prefix:      prefix,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RedisLimiter) key(key string) string {
	return fmt.Sprintf("%s:%s", rl.prefix, key)
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := rl.now()
	windowSeconds := max(int(rl.window.Seconds()), 1)

	raw, err := fixedWindowScript.Run(ctx, rl.client, []string{rl.key(key)},
		rl.maxRequests, windowSeconds, now.Unix()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(raw) != 3 {
		return Result{}, fmt.Errorf("unexpected rate limit result: %v", raw)
	}

	return Result{
		Allowed:   raw[0] == 1,
		Limit:     rl.maxRequests,
		Remaining: int(raw[1]),
		ResetAt:   time.Unix(raw[2], 0),
	}, nil
}
