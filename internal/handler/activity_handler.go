package handler

import (
	"time"

	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ActivityHandler struct {
	activity service.ActivityService
}

func NewActivityHandler(activity service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List returns the audit trail, newest first.
// Query params: start, end (YYYY-MM-DD), action, user_id, limit
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	filter := repository.ActivityLogFilter{
		Action: c.Query("action"),
		Limit:  c.QueryInt("limit", 0),
	}

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start date, expected YYYY-MM-DD"})
		}
		filter.Start = &parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end date, expected YYYY-MM-DD"})
		}
		endOfDay := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.End = &endOfDay
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user_id"})
		}
		filter.UserID = &id
	}

	logs, total, err := h.activity.List(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching activity logs"})
	}

	return c.JSON(fiber.Map{"logs": logs, "total": total})
}

func (h *ActivityHandler) MyActivity(c *fiber.Ctx) error {
	logs, err := h.activity.MyActivity(getUserID(c), c.QueryInt("limit", 0))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching activity logs"})
	}
	return c.JSON(logs)
}

func (h *ActivityHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.activity.Stats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching activity stats"})
	}
	return c.JSON(stats)
}
