package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Sale is one checkout transaction. The sale number (YYMMDD + 3-digit daily
// counter) is the business key; the UUID is the storage key.
type Sale struct {
	BaseModel
	SaleNumber    string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"sale_number"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"cashier_id"`
	Cashier       *User           `gorm:"foreignKey:CashierID" json:"cashier,omitempty" validate:"-"`
	Items         []SaleItem      `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(10);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(10);not null;default:'completed'" json:"payment_status"`
	RefundReason  string          `gorm:"type:text" json:"refund_reason,omitempty"`
}

// SaleItem is one line of a Sale. Items are owned by their sale and do not
// exist independently; the product link is a snapshot reference only.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_sale"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
}

func (item *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
