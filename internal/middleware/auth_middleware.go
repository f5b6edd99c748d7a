package middleware

import (
	"strings"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// The account may have been deactivated after the token was issued
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil || !user.Active {
			return c.Status(401).JSON(fiber.Map{"error": "User not found or inactive"})
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", claims.UserID.String())
		c.Locals("username", claims.Username)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// RequireRole checks that the authenticated user holds the given role
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("user_role").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}
		if userRole != role {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires '" + role + "' role"})
		}
		return c.Next()
	}
}
