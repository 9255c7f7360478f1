package auth

import (
	"strings"

	"erp-backend/internal/apperr"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxUserRoleKey = "user_role"
)

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Subject)
		c.Locals(CtxUserRoleKey, claims.Role)
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return apperr.New(apperr.KindForbidden, "FORBIDDEN", "insufficient role for this operation")
	}
}
