package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryLogRepository is insert-only. The ledger is never updated or
// deleted, so no such methods exist here.
type InventoryLogRepository interface {
	Append(entry *model.InventoryLogEntry) error
	FindByProduct(productID uuid.UUID) ([]model.InventoryLogEntry, error)
	FindBetween(start, end time.Time, productID *uuid.UUID) ([]model.InventoryLogEntry, error)
}

type inventoryLogRepo struct {
	db *gorm.DB
}

func NewInventoryLogRepo(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db}
}

func (r *inventoryLogRepo) Append(entry *model.InventoryLogEntry) error {
	return r.db.Create(entry).Error
}

func (r *inventoryLogRepo) FindByProduct(productID uuid.UUID) ([]model.InventoryLogEntry, error) {
	var entries []model.InventoryLogEntry
	err := r.db.
		Preload("PerformedBy").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *inventoryLogRepo) FindBetween(start, end time.Time, productID *uuid.UUID) ([]model.InventoryLogEntry, error) {
	var entries []model.InventoryLogEntry
	q := r.db.
		Preload("Product").
		Preload("PerformedBy").
		Where("created_at BETWEEN ? AND ?", start, end)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	err := q.Order("created_at DESC").Find(&entries).Error
	return entries, err
}
