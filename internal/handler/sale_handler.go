package handler

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	sales    service.SaleService
	activity service.ActivityService
}

func NewSaleHandler(sales service.SaleService, activity service.ActivityService) *SaleHandler {
	return &SaleHandler{sales: sales, activity: activity}
}

// CreateSale records a completed checkout. Stock is decremented and the
// inventory ledger updated atomically with the sale itself.
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	cashierID := getUserID(c)
	sale, err := h.sales.RecordSale(cashierID, &req)
	if err != nil {
		// Unknown products and stock shortfalls are request problems, not
		// missing resources: the whole checkout payload is rejected as 400.
		if service.IsValidationError(err) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Error creating sale"})
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      cashierID,
		Action:      model.ActionCreateSale,
		Description: fmt.Sprintf("Recorded sale %s (total %s)", sale.SaleNumber, sale.Total.StringFixed(2)),
		Resource:    "Sale",
		ResourceID:  &sale.ID,
		Metadata: map[string]interface{}{
			"sale_number": sale.SaleNumber,
			"items":       len(sale.Items),
		},
	})

	return c.Status(201).JSON(fiber.Map{"sale": sale})
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.sales.GetAllSales()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching sales"})
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.sales.GetSaleByID(id)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching sale"})
	}
	return c.JSON(sale)
}

// RefundSale marks a sale refunded and returns its items to stock.
func (h *SaleHandler) RefundSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID := getUserID(c)
	sale, err := h.sales.RefundSale(id, body.Reason, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
		case errors.Is(err, service.ErrAlreadyRefunded):
			return c.Status(409).JSON(fiber.Map{"error": "Sale has already been refunded"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Error refunding sale"})
		}
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionRefundSale,
		Description: fmt.Sprintf("Refunded sale %s: %s", sale.SaleNumber, body.Reason),
		Resource:    "Sale",
		ResourceID:  &sale.ID,
	})

	return c.JSON(fiber.Map{"sale": sale})
}
