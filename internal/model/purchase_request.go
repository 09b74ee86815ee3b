package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestStatus tracks a purchase request through the suggestion pipeline.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
	// RequestFailed is reached when a pipeline run errors after it started processing.
	RequestFailed RequestStatus = "failed"
)

// Urgency: "low" | "medium" | "high" | "critical"
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// PurchaseRequest is a procurement need waiting for supplier suggestions.
// Only the suggestion pipeline changes Status after creation.
type PurchaseRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Category    string          `gorm:"not null;index"`
	Description string          `gorm:"type:text;not null"`
	Quantity    int             `gorm:"not null"`
	Urgency     Urgency         `gorm:"type:varchar(10);not null;default:'medium'"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Region      string          `gorm:"not null"`
	Status      RequestStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Suggestions []SupplierSuggestion `gorm:"foreignKey:RequestID"`
}

func (PurchaseRequest) TableName() string { return "purchase_requests" }

func (r *PurchaseRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
