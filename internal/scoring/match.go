// Package scoring holds the two pure scoring engines used to rank suppliers:
// the match engine (how well a supplier fits a request) and the risk engine
// (how unreliable the supplier has been historically).
package scoring

import (
	"math"
	"strings"

	"supplieriq/internal/model"
)

const (
	categoryWeight   = 0.5
	regionWeight     = 0.2
	experienceWeight = 0.3

	// experienceCap is the number of in-category orders that earns full experience credit.
	experienceCap = 10
)

// MatchScore rates supplier fit for a request in [0,1].
//
//	category:   1 if categories are equal ignoring case (weight 0.5)
//	region:     1 if regions are equal ignoring case (weight 0.2)
//	experience: min(ordersInCategory/10, 1) (weight 0.3)
func MatchScore(req *model.PurchaseRequest, s *model.Supplier, ordersInCategory int) float64 {
	var categoryScore, regionScore float64
	if strings.EqualFold(s.Category, req.Category) {
		categoryScore = 1
	}
	if strings.EqualFold(s.Region, req.Region) {
		regionScore = 1
	}
	experienceScore := math.Min(float64(ordersInCategory)/experienceCap, 1)

	return categoryWeight*categoryScore + regionWeight*regionScore + experienceWeight*experienceScore
}

// CountInCategory returns how many orders were placed in category, ignoring case.
func CountInCategory(orders []model.PurchaseOrder, category string) int {
	n := 0
	for i := range orders {
		if strings.EqualFold(orders[i].Category, category) {
			n++
		}
	}
	return n
}
