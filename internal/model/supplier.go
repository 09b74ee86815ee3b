package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is owned by supplier management; the suggestion pipeline only reads it.
type Supplier struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Category    string    `gorm:"not null;index:idx_suppliers_category_active,priority:1"`
	Region      string    `gorm:"not null"`
	Description *string   `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true;index:idx_suppliers_category_active,priority:2"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
