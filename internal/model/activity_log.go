package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActionLogin           ActivityAction = "login"
	ActionLogout          ActivityAction = "logout"
	ActionCreateProduct   ActivityAction = "create_product"
	ActionUpdateProduct   ActivityAction = "update_product"
	ActionDeleteProduct   ActivityAction = "delete_product"
	ActionCreateSale      ActivityAction = "create_sale"
	ActionRefundSale      ActivityAction = "refund_sale"
	ActionAdjustInventory ActivityAction = "adjust_inventory"
	ActionCreateUser      ActivityAction = "create_user"
	ActionUpdateUser      ActivityAction = "update_user"
)

// ActivityLog records one user action for the audit trail.
type ActivityLog struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_activity_user_created" json:"user_id"`
	User        *User                  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action      ActivityAction         `gorm:"type:varchar(30);not null;index" json:"action"`
	Description string                 `gorm:"type:text;not null" json:"description"`
	Resource    string                 `gorm:"type:varchar(50)" json:"resource,omitempty"`
	ResourceID  *uuid.UUID             `gorm:"type:uuid" json:"resource_id,omitempty"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	IPAddress   string                 `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent   string                 `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt   time.Time              `gorm:"index:idx_activity_user_created" json:"created_at"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
