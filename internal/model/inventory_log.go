package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

// InventoryLogEntry is one immutable record of a stock-quantity change.
// Entries are append-only: the repository exposes no update or delete, and
// deleting a product does not cascade into its history.
type InventoryLogEntry struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	ProductID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type          MovementType `gorm:"type:varchar(12);not null" json:"type" validate:"required,oneof=purchase sale adjustment return"`
	Quantity      int          `gorm:"not null" json:"quantity"` // signed delta
	PreviousStock int          `gorm:"not null" json:"previous_stock"`
	NewStock      int          `gorm:"not null" json:"new_stock"`
	Reference     string       `gorm:"type:varchar(255);not null" json:"reference"`
	Note          string       `gorm:"type:text" json:"note,omitempty"`
	PerformedByID uuid.UUID    `gorm:"type:uuid;not null" json:"performed_by_id"`
	PerformedBy   *User        `gorm:"foreignKey:PerformedByID" json:"performed_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (e *InventoryLogEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
