package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueType: "quality" | "delivery" | "communication" | "pricing" | "other"
type IssueType string

const (
	IssueQuality       IssueType = "quality"
	IssueDelivery      IssueType = "delivery"
	IssueCommunication IssueType = "communication"
	IssuePricing       IssueType = "pricing"
	IssueOther         IssueType = "other"
)

// IssueSeverity: "low" | "medium" | "high" | "critical"
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// SupplierIssue is an immutable incident record against a supplier.
type SupplierIssue struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	SupplierID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Type        IssueType     `gorm:"type:varchar(20);not null"`
	Severity    IssueSeverity `gorm:"type:varchar(10);not null;default:'medium'"`
	Description string        `gorm:"type:text;not null"`
	Resolved    bool          `gorm:"not null;default:false"`
	ResolvedAt  *time.Time    `gorm:"type:date"`
	CreatedAt   time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (SupplierIssue) TableName() string { return "supplier_issues" }

func (i *SupplierIssue) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
