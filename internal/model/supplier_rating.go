package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierRating is a 0.00–5.00 score left for a supplier, optionally scoped to a category.
type SupplierRating struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Rating     decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	Comment    *string         `gorm:"type:text"`
	Category   *string
	CreatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (SupplierRating) TableName() string { return "supplier_ratings" }

func (r *SupplierRating) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
