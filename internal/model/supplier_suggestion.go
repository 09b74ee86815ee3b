package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierSuggestion is one ranked supplier for a purchase request.
// Rows are written once per pipeline run and never updated.
type SupplierSuggestion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_suggestions_request_rank,priority:1;uniqueIndex:idx_suggestions_request_supplier,priority:1"`
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_suggestions_request_supplier,priority:2"`
	MatchScore  float64   `gorm:"type:decimal(5,4);not null"`
	RiskScore   int       `gorm:"not null"`
	Explanation string    `gorm:"type:text;not null"`
	Rank        int       `gorm:"not null;uniqueIndex:idx_suggestions_request_rank,priority:2"`
	CreatedAt   time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (SupplierSuggestion) TableName() string { return "supplier_suggestions" }

func (s *SupplierSuggestion) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// All returns every table the service owns, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Supplier{},
		&PurchaseRequest{},
		&PurchaseOrder{},
		&SupplierIssue{},
		&SupplierRating{},
		&SupplierSuggestion{},
	}
}
