package scoring

import (
	"fmt"
	"math"
	"strings"

	"supplieriq/internal/model"
)

// Factor weights. They sum to 1 so the weighted total stays in [0,1].
const (
	lateWeight       = 0.4
	issueWeight      = 0.3
	ratingWeight     = 0.2
	volatilityWeight = 0.1
)

const (
	// issueSaturation is the issues-per-order ratio at which issue risk maxes out.
	issueSaturation = 0.5
	// volatilitySaturation is the relative unit-price spread at which volatility risk maxes out.
	volatilitySaturation = 0.5
	// neutralRating is the normalized rating risk assumed when a supplier has no ratings.
	neutralRating = 0.5
)

// RiskAssessment is the risk engine output.
type RiskAssessment struct {
	Score       int // 0..100
	Explanation string
}

// RiskScore estimates supplier unreliability from its order, issue and rating history.
func RiskScore(orders []model.PurchaseOrder, issues []model.SupplierIssue, ratings []model.SupplierRating) RiskAssessment {
	parts := make([]string, 0, 4)

	late := lateRate(orders)
	parts = append(parts, deliverySentence(late))

	issueNorm := math.Min(float64(len(issues))/float64(max(len(orders), 1))/issueSaturation, 1)
	parts = append(parts, issueSentence(len(issues), len(orders), issueNorm))

	ratingNorm := neutralRating
	avg := 0.0
	if len(ratings) > 0 {
		avg = averageRating(ratings)
		ratingNorm = (5 - avg) / 4
	}
	parts = append(parts, ratingSentence(len(ratings), avg))

	volatility, volNorm := priceVolatility(orders)
	if s := volatilitySentence(volatility, volNorm); s != "" {
		parts = append(parts, s)
	}

	total := lateWeight*late + issueWeight*issueNorm + ratingWeight*ratingNorm + volatilityWeight*volNorm

	return RiskAssessment{
		Score:       int(math.Round(total * 100)),
		Explanation: strings.Join(parts, ". ") + ".",
	}
}

func lateRate(orders []model.PurchaseOrder) float64 {
	if len(orders) == 0 {
		return 0
	}
	late := 0
	for i := range orders {
		if orders[i].IsLate {
			late++
		}
	}
	return float64(late) / float64(len(orders))
}

func averageRating(ratings []model.SupplierRating) float64 {
	sum := 0.0
	for i := range ratings {
		sum += ratings[i].Rating.InexactFloat64()
	}
	return sum / float64(len(ratings))
}

// priceVolatility returns the raw relative unit-price spread and its normalized value.
// Fewer than two orders carry no volatility signal.
func priceVolatility(orders []model.PurchaseOrder) (float64, float64) {
	if len(orders) < 2 {
		return 0, 0
	}
	lo := orders[0].UnitPrice.InexactFloat64()
	hi := lo
	for i := 1; i < len(orders); i++ {
		p := orders[i].UnitPrice.InexactFloat64()
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	v := (hi - lo) / math.Max(lo, 1)
	return v, math.Min(math.Max(v/volatilitySaturation, 0), 1)
}

func deliverySentence(late float64) string {
	onTime := (1 - late) * 100
	switch {
	case late == 0:
		return fmt.Sprintf("Excellent delivery record: %.1f%% on-time", onTime)
	case late < 0.1:
		return fmt.Sprintf("Good delivery record: %.1f%% on-time", onTime)
	case late < 0.25:
		return fmt.Sprintf("Fair delivery record: %.1f%% on-time", onTime)
	default:
		return fmt.Sprintf("Poor delivery record: only %.1f%% on-time", onTime)
	}
}

func issueSentence(issues, orders int, norm float64) string {
	switch {
	case issues == 0:
		return "No recorded issues"
	case norm < 0.3:
		return fmt.Sprintf("Low issue frequency: %d issues across %d orders", issues, orders)
	case norm < 0.6:
		return fmt.Sprintf("Moderate issue frequency: %d issues across %d orders", issues, orders)
	default:
		return fmt.Sprintf("High issue frequency: %d issues across %d orders", issues, orders)
	}
}

func ratingSentence(count int, avg float64) string {
	switch {
	case count == 0:
		return "No ratings available (neutral risk assumed)"
	case avg >= 4.5:
		return fmt.Sprintf("Excellent average rating: %.2f/5", avg)
	case avg >= 3.5:
		return fmt.Sprintf("Good average rating: %.2f/5", avg)
	case avg >= 2.5:
		return fmt.Sprintf("Fair average rating: %.2f/5", avg)
	default:
		return fmt.Sprintf("Poor average rating: %.2f/5", avg)
	}
}

func volatilitySentence(raw, norm float64) string {
	switch {
	case norm > 0.5:
		return fmt.Sprintf("Warning: High price volatility (%.1f%% variation)", raw*100)
	case norm > 0.2:
		return fmt.Sprintf("Note: Moderate price volatility (%.1f%% variation)", raw*100)
	default:
		return ""
	}
}
