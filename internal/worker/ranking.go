package worker

import (
	"sort"

	"supplieriq/internal/model"
	"supplieriq/internal/scoring"

	"github.com/google/uuid"
)

// candidate is one scored supplier before ranking.
type candidate struct {
	supplier   model.Supplier
	matchScore float64
	risk       scoring.RiskAssessment
}

// rankCandidates orders candidates by match score descending, then risk ascending,
// keeping input order for full ties, and assigns ranks 1..N.
func rankCandidates(requestID uuid.UUID, cs []candidate) []model.SupplierSuggestion {
	sorted := append([]candidate(nil), cs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].matchScore != sorted[j].matchScore {
			return sorted[i].matchScore > sorted[j].matchScore
		}
		return sorted[i].risk.Score < sorted[j].risk.Score
	})

	out := make([]model.SupplierSuggestion, len(sorted))
	for i, c := range sorted {
		out[i] = model.SupplierSuggestion{
			RequestID:   requestID,
			SupplierID:  c.supplier.ID,
			MatchScore:  c.matchScore,
			RiskScore:   c.risk.Score,
			Explanation: c.risk.Explanation,
			Rank:        i + 1,
		}
	}
	return out
}
