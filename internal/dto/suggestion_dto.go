package dto

import "time"

type SupplierSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Region   string `json:"region"`
}

// SuggestionResponse is one ranked entry of GET /v1/requests/:id/suggestions.
type SuggestionResponse struct {
	ID          string           `json:"id"`
	RequestID   string           `json:"request_id"`
	SupplierID  string           `json:"supplier_id"`
	Rank        int              `json:"rank"`
	MatchScore  float64          `json:"match_score"`
	RiskScore   int              `json:"risk_score"`
	Explanation string           `json:"explanation"`
	Supplier    *SupplierSummary `json:"supplier,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
