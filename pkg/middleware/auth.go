package middleware

import (
	"context"

	"facturas/internal/models"
	"facturas/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthUserResolver loads the full request identity (user plus active plan)
// for a validated token.
type AuthUserResolver interface {
	ResolveAuthUser(ctx context.Context, userID uuid.UUID) (*models.AuthUser, error)
}

// AuthMiddleware validates the bearer token and stores the resolved
// *models.AuthUser under c.Locals("user").
func AuthMiddleware(jwtManager *auth.JWTManager, users AuthUserResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if token == "" {
			logger.Warn("Missing authorization token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		// Remove "Bearer " prefix if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			logger.Warn("Token carries a malformed subject", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		user, err := users.ResolveAuthUser(c.Context(), userID)
		if err != nil {
			logger.Warn("Failed to resolve authenticated user",
				zap.String("user_id", claims.UserID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user", user)

		return c.Next()
	}
}

// RequireRole rejects requests whose authenticated user does not hold the
// given role. Must run after AuthMiddleware.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.AuthUser)
		if !ok || user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}
