package handler

import (
	"time"

	"go-retail-pos/internal/service"
	"go-retail-pos/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reports service.ReportService
	clock   clock.Clock
}

func NewReportHandler(reports service.ReportService, clk clock.Clock) *ReportHandler {
	return &ReportHandler{reports: reports, clock: clk}
}

func (h *ReportHandler) AdminDashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.GetAdminDashboard()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building dashboard"})
	}
	return c.JSON(dashboard)
}

func (h *ReportHandler) CashierDashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.GetCashierDashboard(getUserID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building dashboard"})
	}
	return c.JSON(dashboard)
}

// SalesReport returns per-day revenue between start and end.
// Defaults to the last 30 days when the range is omitted.
func (h *ReportHandler) SalesReport(c *fiber.Ctx) error {
	start, end, err := h.parseRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range, expected YYYY-MM-DD"})
	}
	rows, err := h.reports.GetSalesReport(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building sales report"})
	}
	return c.JSON(rows)
}

func (h *ReportHandler) ProfitExpenseReport(c *fiber.Ctx) error {
	start, end, err := h.parseRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range, expected YYYY-MM-DD"})
	}
	report, err := h.reports.GetProfitExpenseReport(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building profit report"})
	}
	return c.JSON(report)
}

// InventoryMovement returns the stock ledger over a range, optionally
// narrowed to one product via the product_id query param.
func (h *ReportHandler) InventoryMovement(c *fiber.Ctx) error {
	start, end, err := h.parseRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range, expected YYYY-MM-DD"})
	}
	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product id"})
		}
		productID = &id
	}
	report, err := h.reports.GetInventoryMovementReport(start, end, productID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building movement report"})
	}
	return c.JSON(report)
}

func (h *ReportHandler) SalesByUser(c *fiber.Ctx) error {
	start, end, err := h.parseRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range, expected YYYY-MM-DD"})
	}
	rows, err := h.reports.GetSalesByUser(start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error building cashier report"})
	}
	return c.JSON(rows)
}

func (h *ReportHandler) parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := h.clock.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// include the whole end day
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}
