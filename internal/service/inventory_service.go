package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows the catalog listing.
type ProductFilter struct {
	ActiveOnly bool
	LowStock   bool
	Search     string
}

// StockAdjustmentRequest is the manual stock-change entry point.
type StockAdjustmentRequest struct {
	Quantity  int    `json:"quantity" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=purchase adjustment return"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type InventoryService interface {
	CreateProduct(req *model.Product, actorID uuid.UUID) error
	UpdateProduct(id uuid.UUID, req *model.Product, actorID uuid.UUID) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actorID uuid.UUID) error
	GetProducts(filter ProductFilter) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetInventoryHistory(productID uuid.UUID) ([]model.InventoryLogEntry, error)
	AdjustStock(productID uuid.UUID, req *StockAdjustmentRequest, actorID uuid.UUID) (*model.Product, *model.InventoryLogEntry, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	logRepo     repository.InventoryLogRepository
	txRunner    repository.TxRunner
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, logRepo repository.InventoryLogRepository, txRunner repository.TxRunner, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		logRepo:     logRepo,
		txRunner:    txRunner,
		wsHub:       hub,
	}
}

// CreateProduct persists a new catalog entry and, when it arrives with
// stock, records the initial load as a purchase ledger entry.
func (s *inventoryService) CreateProduct(req *model.Product, actorID uuid.UUID) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, errs[0].Describe())
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return errors.New("price and cost must not be negative")
	}
	if req.MinStockLevel <= 0 {
		req.MinStockLevel = model.DefaultMinStockLevel
	}

	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUExists
	}

	return s.txRunner.Run(func(r repository.Repos) error {
		if err := r.Products.Create(req); err != nil {
			return err
		}
		if req.StockQuantity > 0 {
			entry := &model.InventoryLogEntry{
				ProductID:     req.ID,
				Type:          model.MovementPurchase,
				Quantity:      req.StockQuantity,
				PreviousStock: 0,
				NewStock:      req.StockQuantity,
				Reference:     "Initial stock",
				PerformedByID: actorID,
			}
			if err := r.InventoryLogs.Append(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateProduct applies catalog edits under a row lock. A stock change made
// through this path is written to the ledger as an adjustment.
func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, actorID uuid.UUID) (*model.Product, error) {
	var updated *model.Product

	err := s.txRunner.Run(func(r repository.Repos) error {
		existing, err := r.Products.FindByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		oldStock := existing.StockQuantity

		existing.SKU = req.SKU
		existing.Barcode = req.Barcode
		existing.Name = req.Name
		existing.Category = req.Category
		existing.Description = req.Description
		existing.Price = req.Price
		existing.Cost = req.Cost
		existing.StockQuantity = req.StockQuantity
		if req.MinStockLevel > 0 {
			existing.MinStockLevel = req.MinStockLevel
		}
		existing.Active = req.Active

		if existing.StockQuantity < 0 {
			return ErrNegativeStock
		}
		if existing.Price.IsNegative() || existing.Cost.IsNegative() {
			return errors.New("price and cost must not be negative")
		}

		if err := r.Products.Update(existing); err != nil {
			return err
		}

		if oldStock != existing.StockQuantity {
			entry := &model.InventoryLogEntry{
				ProductID:     existing.ID,
				Type:          model.MovementAdjustment,
				Quantity:      existing.StockQuantity - oldStock,
				PreviousStock: oldStock,
				NewStock:      existing.StockQuantity,
				Reference:     "Manual adjustment",
				PerformedByID: actorID,
			}
			if err := r.InventoryLogs.Append(entry); err != nil {
				return err
			}
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock(updated)
	return updated, nil
}

// DeleteProduct soft-deletes by clearing the active flag. Ledger history is
// kept; it references the product weakly.
func (s *inventoryService) DeleteProduct(id uuid.UUID, actorID uuid.UUID) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	product.Active = false
	return s.productRepo.Update(product)
}

func (s *inventoryService) GetProducts(filter ProductFilter) ([]model.Product, error) {
	if filter.Search != "" {
		return s.productRepo.Search(filter.Search)
	}
	if filter.LowStock {
		return s.productRepo.FindLowStock()
	}
	return s.productRepo.FindAll(filter.ActiveOnly)
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) GetInventoryHistory(productID uuid.UUID) ([]model.InventoryLogEntry, error) {
	return s.logRepo.FindByProduct(productID)
}

// AdjustStock applies a signed delta to one product and appends exactly one
// ledger entry with the before/after snapshots. The product row stays locked
// until commit, so the read-modify-write is atomic; a delta that would drive
// stock below zero leaves the record untouched and writes nothing.
func (s *inventoryService) AdjustStock(productID uuid.UUID, req *StockAdjustmentRequest, actorID uuid.UUID) (*model.Product, *model.InventoryLogEntry, error) {
	if req.Quantity == 0 {
		return nil, nil, errors.New("quantity must not be zero")
	}
	movType := model.MovementType(req.Type)
	if movType == "" {
		movType = model.MovementAdjustment
	}
	reference := req.Reference
	if reference == "" {
		reference = "Stock adjustment"
	}

	var product *model.Product
	var entry *model.InventoryLogEntry

	err := s.txRunner.Run(func(r repository.Repos) error {
		p, err := r.Products.FindByIDForUpdate(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		newStock := p.StockQuantity + req.Quantity
		if newStock < 0 {
			return ErrNegativeStock
		}

		if err := r.Products.UpdateStock(p.ID, newStock); err != nil {
			return err
		}

		entry = &model.InventoryLogEntry{
			ProductID:     p.ID,
			Type:          movType,
			Quantity:      req.Quantity,
			PreviousStock: p.StockQuantity,
			NewStock:      newStock,
			Reference:     reference,
			Note:          req.Note,
			PerformedByID: actorID,
		}
		if err := r.InventoryLogs.Append(entry); err != nil {
			return err
		}

		p.StockQuantity = newStock
		product = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.broadcastStock(product)
	return product, entry, nil
}

func (s *inventoryService) broadcastStock(product *model.Product) {
	if s.wsHub == nil || product == nil {
		return
	}
	go func() {
		s.wsHub.BroadcastEvent(ws.EventStockUpdate, map[string]interface{}{
			"product_id": product.ID,
			"sku":        product.SKU,
			"new_stock":  product.StockQuantity,
		})
		if product.LowStock() && product.Active {
			s.wsHub.BroadcastEvent(ws.EventLowStockAlert, map[string]interface{}{
				"product_id":   product.ID,
				"product_name": product.Name,
				"new_stock":    product.StockQuantity,
			})
		}
	}()
}
