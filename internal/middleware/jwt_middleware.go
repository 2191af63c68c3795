package middleware

import (
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/apperrors"
	"storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID   = "user_id"
	localUsername = "username"
	localRole     = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.New(apperrors.CodeUnauthorized, "Authorization header is required")
		}
		if err := authenticate(c, authService, log, authHeader); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalAuth(authService *services.AuthService, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}
		if err := authenticate(c, authService, log, authHeader); err != nil {
			return err
		}
		return c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return apperrors.New(apperrors.CodeForbidden, "admin role required")
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, authService *services.AuthService, log *logger.Logger, authHeader string) error {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return apperrors.New(apperrors.CodeUnauthorized, "Authorization header format must be 'Bearer <token>'")
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		log.Warn(c.UserContext(), "jwt validation failed", err)
		return apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired token")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired token")
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	c.Locals(localUserID, userID)
	c.Locals(localUsername, username)
	c.Locals(localRole, role)
	c.SetUserContext(log.WithUserID(c.UserContext(), userID))
	return nil
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func IsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(localRole).(string)
	return role == models.RoleAdmin
}

// Actor describes the caller for ownership checks.
func Actor(c *fiber.Ctx) services.Actor {
	return services.Actor{UserID: UserID(c), IsAdmin: IsAdmin(c)}
}
