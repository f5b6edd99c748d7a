package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helpers to read user info from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) uuid.UUID {
	raw := c.Locals("user_id")
	if raw == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func getUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals("user_role").(string)
	return role
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
