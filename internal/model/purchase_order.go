package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus: "pending" | "confirmed" | "shipped" | "delivered" | "cancelled"
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// PurchaseOrder is a historical order placed with a supplier.
// IsLate is true iff ActualDeliveryDate is after ExpectedDeliveryDate.
type PurchaseOrder struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SupplierID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category             string          `gorm:"not null"`
	Quantity             int             `gorm:"not null"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status               OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	ExpectedDeliveryDate *time.Time      `gorm:"type:date"`
	ActualDeliveryDate   *time.Time      `gorm:"type:date"`
	IsLate               bool            `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (o *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
