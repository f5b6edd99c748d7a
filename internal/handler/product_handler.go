package handler

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	inventory service.InventoryService
	activity  service.ActivityService
}

func NewProductHandler(inventory service.InventoryService, activity service.ActivityService) *ProductHandler {
	return &ProductHandler{inventory: inventory, activity: activity}
}

// GetProducts lists the catalog.
// Query params: active=true, low_stock=true, q=<search>
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := service.ProductFilter{
		ActiveOnly: c.QueryBool("active", false),
		LowStock:   c.QueryBool("low_stock", false),
		Search:     c.Query("q"),
	}
	products, err := h.inventory.GetProducts(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching products"})
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.inventory.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching product"})
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID := getUserID(c)
	if err := h.inventory.CreateProduct(&product, actorID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionCreateProduct,
		Description: fmt.Sprintf("Created product '%s' (SKU %s)", product.Name, product.SKU),
		Resource:    "Product",
		ResourceID:  &product.ID,
	})

	return c.Status(201).JSON(product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID := getUserID(c)
	updated, err := h.inventory.UpdateProduct(id, &product, actorID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionUpdateProduct,
		Description: fmt.Sprintf("Updated product '%s' (SKU %s)", updated.Name, updated.SKU),
		Resource:    "Product",
		ResourceID:  &updated.ID,
	})

	return c.JSON(updated)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	actorID := getUserID(c)
	if err := h.inventory.DeleteProduct(id, actorID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionDeleteProduct,
		Description: "Deactivated product " + id.String(),
		Resource:    "Product",
		ResourceID:  &id,
	})

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// GetInventoryHistory returns the ledger for one product, newest first.
func (h *ProductHandler) GetInventoryHistory(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	entries, err := h.inventory.GetInventoryHistory(id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching inventory history"})
	}
	return c.JSON(entries)
}

// AdjustStock applies a manual signed stock change.
// POST /products/:id/stock {quantity, type, reference, note}
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.StockAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID := getUserID(c)
	product, entry, err := h.inventory.AdjustStock(id, &req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
		case errors.Is(err, service.ErrNegativeStock):
			return c.Status(400).JSON(fiber.Map{"error": "Stock cannot be negative"})
		default:
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	h.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionAdjustInventory,
		Description: fmt.Sprintf("Adjusted stock of '%s' by %d (now %d)", product.Name, req.Quantity, product.StockQuantity),
		Resource:    "Product",
		ResourceID:  &product.ID,
		Metadata: map[string]interface{}{
			"previous_stock": entry.PreviousStock,
			"new_stock":      entry.NewStock,
		},
	})

	return c.JSON(fiber.Map{"product": product, "entry": entry})
}
