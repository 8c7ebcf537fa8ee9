package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// allowScript performs the fixed-window check-and-increment atomically.
// KEYS[1] = counter key, ARGV[1] = max attempts, ARGV[2] = window in ms.
// Returns {allowed, count, ttl_ms}.
var allowScript = redis.NewScript(`
local count = redis.call('GET', KEYS[1])
if not count then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
count = tonumber(count)
local ttl = redis.call('PTTL', KEYS[1])
if count >= tonumber(ARGV[1]) then
  return {0, count, ttl}
end
count = redis.call('INCR', KEYS[1])
return {1, count, ttl}
`)

// RedisLimiter shares fixed-window counters across instances through Redis.
// Redis key expiry replaces the in-memory sweep.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	policy Policy
	now    func() time.Time
}

// RedisLimiterConfig configures a RedisLimiter
type RedisLimiterConfig struct {
	Client    redis.Scripter
	KeyPrefix string
	Policy    Policy
}

// NewRedisLimiter creates a limiter backed by Redis
func NewRedisLimiter(cfg RedisLimiterConfig) *RedisLimiter {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "portfolio:contact:ratelimit:"
	}
	return &RedisLimiter{
		client: cfg.Client,
		prefix: prefix,
		policy: cfg.Policy.normalized(),
		now:    time.Now,
	}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := allowScript.Run(ctx, l.client, []string{l.prefix + key},
		l.policy.MaxAttempts, l.policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		metrics.RateLimitDecisions.WithLabelValues(backendRedis, "error").Inc()
		return Decision{}, fmt.Errorf("redis rate limit script: %w", err)
	}
	if len(res) != 3 {
		metrics.RateLimitDecisions.WithLabelValues(backendRedis, "error").Inc()
		return Decision{}, fmt.Errorf("redis rate limit script: unexpected reply length %d", len(res))
	}

	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	decision := Decision{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		ResetAt: l.now().Add(ttl),
	}

	result := "denied"
	if decision.Allowed {
		result = "allowed"
	}
	metrics.RateLimitDecisions.WithLabelValues(backendRedis, result).Inc()

	return decision, nil
}
