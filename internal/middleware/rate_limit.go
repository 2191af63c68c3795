package middleware

import (
	"context"
	"strconv"
	"time"

	"storefront/pkg/apperrors"
	"storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Limiter is a fixed-window counter. *redis.Client satisfies it.
type Limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit throttles requests per client IP under scope. A nil limiter disables it;
// limiter errors let the request through.
func RateLimit(limiter Limiter, scope string, limit int64, window time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		allowed, count, err := limiter.FixedWindowAllow(c.UserContext(), scope+":"+c.IP(), limit, window)
		if err != nil {
			log.Warn(c.UserContext(), "rate limiter unavailable", err)
			return c.Next()
		}
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return apperrors.New(apperrors.CodeRateLimit, "too many requests, try again later")
		}
		return c.Next()
	}
}
