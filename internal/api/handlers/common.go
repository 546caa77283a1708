package handlers

import (
	"facturas/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentUser returns the identity placed on the context by the auth
// middleware.
func currentUser(c *fiber.Ctx) (*models.AuthUser, error) {
	user, ok := c.Locals("user").(*models.AuthUser)
	if !ok || user == nil {
		return nil, fiber.ErrUnauthorized
	}
	return user, nil
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
