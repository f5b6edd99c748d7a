package service

import (
	"errors"
	"fmt"
	"strconv"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/clock"
	"go-retail-pos/pkg/logger"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleItemRequest is one proposed line of a checkout.
type SaleItemRequest struct {
	ProductID   uuid.UUID       `json:"product" validate:"uuid_required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CreateSaleRequest mirrors the checkout payload. Totals are taken as
// submitted by the client and are not recomputed, but negative values
// are rejected.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card other"`
}

type SaleService interface {
	RecordSale(cashierID uuid.UUID, req *CreateSaleRequest) (*model.Sale, error)
	GetAllSales() ([]model.Sale, error)
	GetSaleByID(id uuid.UUID) (*model.Sale, error)
	RefundSale(saleID uuid.UUID, reason string, actorID uuid.UUID) (*model.Sale, error)
}

type saleService struct {
	txRunner repository.TxRunner
	saleRepo repository.SaleRepository
	clock    clock.Clock
	log      *logger.Logger
	wsHub    *ws.Hub
}

func NewSaleService(txRunner repository.TxRunner, saleRepo repository.SaleRepository, clk clock.Clock, log *logger.Logger, hub *ws.Hub) SaleService {
	return &saleService{
		txRunner: txRunner,
		saleRepo: saleRepo,
		clock:    clk,
		log:      log,
		wsHub:    hub,
	}
}

// ledgerDraft holds the per-item snapshots captured while decrementing stock,
// so ledger entries can reference the sale number assigned later in the
// same transaction.
type ledgerDraft struct {
	productID     uuid.UUID
	productName   string
	quantity      int
	previousStock int
	newStock      int
	minStockLevel int
}

// RecordSale validates the proposed transaction, decrements stock with a
// conditional atomic update per line, assigns the daily sale number and
// persists the sale plus one ledger entry per item - all inside a single
// database transaction. Any failure rolls the whole operation back; no
// partial sale or orphaned stock mutation can remain.
func (s *saleService) RecordSale(cashierID uuid.UUID, req *CreateSaleRequest) (*model.Sale, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs[0].Describe())
	}
	// Totals are trusted as submitted, but never negative.
	if req.Subtotal.IsNegative() || req.Tax.IsNegative() || req.Discount.IsNegative() || req.Total.IsNegative() {
		return nil, fmt.Errorf("%w: totals must not be negative", ErrValidation)
	}

	var sale *model.Sale
	var drafts []ledgerDraft

	err := s.txRunner.Run(func(r repository.Repos) error {
		items := make([]model.SaleItem, 0, len(req.Items))
		drafts = drafts[:0]

		for _, it := range req.Items {
			product, err := r.Products.FindByID(it.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
				}
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: %s", ErrProductNotFound, product.Name)
			}

			updated, ok, err := r.Products.DecrementStock(product.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, product.Name)
			}

			items = append(items, model.SaleItem{
				ProductID:   product.ID,
				Quantity:    it.Quantity,
				PriceAtSale: it.PriceAtSale,
				Subtotal:    it.Subtotal,
			})
			drafts = append(drafts, ledgerDraft{
				productID:     product.ID,
				productName:   product.Name,
				quantity:      it.Quantity,
				previousStock: updated.StockQuantity + it.Quantity,
				newStock:      updated.StockQuantity,
				minStockLevel: product.MinStockLevel,
			})
		}

		number := s.nextSaleNumber(r.Sales)

		sale = &model.Sale{
			SaleNumber:    number,
			CashierID:     cashierID,
			Items:         items,
			Subtotal:      req.Subtotal,
			Tax:           req.Tax,
			Discount:      req.Discount,
			Total:         req.Total,
			PaymentMethod: model.PaymentMethod(req.PaymentMethod),
			PaymentStatus: model.PaymentCompleted,
		}
		if err := r.Sales.Create(sale); err != nil {
			return err
		}

		for _, d := range drafts {
			entry := &model.InventoryLogEntry{
				ProductID:     d.productID,
				Type:          model.MovementSale,
				Quantity:      -d.quantity,
				PreviousStock: d.previousStock,
				NewStock:      d.newStock,
				Reference:     "Sale #" + number,
				PerformedByID: cashierID,
			}
			if err := r.InventoryLogs.Append(entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Resolve items to full product detail for receipt rendering.
	full, err := s.saleRepo.FindByID(sale.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("sale_number", sale.SaleNumber).Msg("sale committed but reload failed")
		full = sale
	}

	s.broadcastSale(full, drafts)

	return full, nil
}

// nextSaleNumber derives YYMMDD + zero-padded daily counter from the highest
// number already issued for the day. If the lookup fails it falls back to a
// synthetic ERR-prefixed identifier so checkout keeps working while the
// store is degraded (uniqueness is then best-effort only).
func (s *saleService) nextSaleNumber(sales repository.SaleRepository) string {
	now := s.clock.Now()
	dayCode := now.Format("060102")

	last, err := sales.LastNumberForDay(dayCode)
	if err != nil {
		s.log.Error().Err(err).Msg("sale number derivation failed, using fallback")
		millis := strconv.FormatInt(now.UnixMilli(), 10)
		if len(millis) > 9 {
			millis = millis[len(millis)-9:]
		}
		return "ERR" + millis
	}

	sequence := 1
	if last != "" {
		if n, convErr := strconv.Atoi(last[len(last)-3:]); convErr == nil {
			sequence = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", dayCode, sequence)
}

func (s *saleService) broadcastSale(sale *model.Sale, drafts []ledgerDraft) {
	if s.wsHub == nil {
		return
	}
	go func() {
		s.wsHub.BroadcastEvent(ws.EventSaleCompleted, map[string]interface{}{
			"sale_number": sale.SaleNumber,
			"total":       sale.Total,
			"items":       len(sale.Items),
			"cashier_id":  sale.CashierID,
		})
		for _, d := range drafts {
			s.wsHub.BroadcastEvent(ws.EventStockUpdate, map[string]interface{}{
				"product_id": d.productID,
				"new_stock":  d.newStock,
			})
			if d.newStock <= d.minStockLevel {
				s.wsHub.BroadcastEvent(ws.EventLowStockAlert, map[string]interface{}{
					"product_id":   d.productID,
					"product_name": d.productName,
					"new_stock":    d.newStock,
				})
			}
		}
	}()
}

func (s *saleService) GetAllSales() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *saleService) GetSaleByID(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// RefundSale flips a completed sale to refunded and restores each item's
// stock with a return ledger entry, in one transaction. The sale record
// itself stays immutable apart from the payment-status transition.
func (s *saleService) RefundSale(saleID uuid.UUID, reason string, actorID uuid.UUID) (*model.Sale, error) {
	err := s.txRunner.Run(func(r repository.Repos) error {
		sale, err := r.Sales.FindByIDForUpdate(saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if sale.PaymentStatus == model.PaymentRefunded {
			return ErrAlreadyRefunded
		}

		for _, item := range sale.Items {
			product, err := r.Products.FindByIDForUpdate(item.ProductID)
			if err != nil {
				// Product deleted since the sale; skip restock, the refund
				// itself still proceeds.
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			newStock := product.StockQuantity + item.Quantity
			if err := r.Products.UpdateStock(product.ID, newStock); err != nil {
				return err
			}
			entry := &model.InventoryLogEntry{
				ProductID:     product.ID,
				Type:          model.MovementReturn,
				Quantity:      item.Quantity,
				PreviousStock: product.StockQuantity,
				NewStock:      newStock,
				Reference:     "Refund of Sale #" + sale.SaleNumber,
				Note:          reason,
				PerformedByID: actorID,
			}
			if err := r.InventoryLogs.Append(entry); err != nil {
				return err
			}
		}

		return r.Sales.UpdatePaymentStatus(sale.ID, model.PaymentRefunded, reason)
	})
	if err != nil {
		return nil, err
	}

	return s.saleRepo.FindByID(saleID)
}
