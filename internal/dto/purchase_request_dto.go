package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreatePurchaseRequest is the body of POST /v1/requests. Urgency defaults to medium.
type CreatePurchaseRequest struct {
	Category    string          `json:"category"    validate:"required,max=100"`
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity"    validate:"required,gt=0"`
	Budget      decimal.Decimal `json:"budget"      validate:"min=0"`
	Urgency     string          `json:"urgency"     validate:"omitempty,oneof=low medium high critical"`
	Region      string          `json:"region"      validate:"required,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PurchaseRequestResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Budget      decimal.Decimal `json:"budget"`
	Urgency     string          `json:"urgency"`
	Region      string          `json:"region"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
