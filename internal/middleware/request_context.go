package middleware

import (
	"storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestContext attaches the request id to the logger carried in the user context.
// It must run after the requestid middleware.
func RequestContext(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if requestID != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), requestID))
		}
		return c.Next()
	}
}
