package model

import "github.com/shopspring/decimal"

// DefaultMinStockLevel is applied when a product is created without a threshold.
const DefaultMinStockLevel = 10

type Product struct {
	BaseModel
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Barcode       *string         `gorm:"type:varchar(64);uniqueIndex" json:"barcode,omitempty"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category      string          `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Cost          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity" validate:"gte=0"`
	MinStockLevel int             `gorm:"not null;default:10" json:"min_stock_level"`
	Active        bool            `gorm:"default:true" json:"active"`
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
