package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/observability"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// fixed window: the first hit in a window sets its expiry
const intakeLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Limiter decides whether a keyed caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter kept in Redis.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

// NewRedisLimiter returns nil when there is no client or the limit is disabled.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if client == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(intakeLimitScript),
		limit:  limit,
		window: window,
	}
}

// Allow counts one hit for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	allowed, err := l.script.Run(ctx, l.client, []string{"intake:" + key}, ttl, l.limit).Int64()
	if err != nil {
		return true, err
	}
	return allowed == 1, nil
}

// IntakeRateLimit throttles public application submissions per client IP.
// Limiter errors let the request through.
func IntakeRateLimit(limiter Limiter, metrics *observability.Metrics, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		switch {
		case err != nil:
			logger.Warn("intake rate limiter unavailable", zap.Error(err))
			metrics.RecordRateLimit("bypassed")
			return c.Next()
		case !allowed:
			metrics.RecordRateLimit("limited")
			return apperrors.NewRateLimited("demasiadas postulaciones, intenta más tarde")
		}
		metrics.RecordRateLimit("allowed")
		return c.Next()
	}
}
