package handler

import (
	"errors"

	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	resp, err := h.auth.Login(req.Username, req.Password, c.IP(), c.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(401).JSON(fiber.Map{"error": "Invalid username or password"})
		case errors.Is(err, service.ErrUserInactive):
			return c.Status(403).JSON(fiber.Map{"error": "Account is deactivated"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Error logging in"})
		}
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(getUserID(c)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error logging out"})
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := h.auth.GetProfile(getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching profile"})
	}
	return c.JSON(profile)
}
