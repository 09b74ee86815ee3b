// Package seed loads the demo supplier catalogue: suppliers, their order
// history, incidents and ratings. It replaces any previous catalogue.
package seed

import (
	"context"
	"fmt"
	"time"

	"supplieriq/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Summary reports how many rows of each kind were written.
type Summary struct {
	Suppliers int
	Orders    int
	Issues    int
	Ratings   int
}

type supplierSeed struct {
	name, category, region, description string
}

type orderSeed struct {
	supplier, category string
	quantity           int
	unitPrice, total   string
	expected, actual   string
	late               bool
}

type issueSeed struct {
	supplier    string
	typ         model.IssueType
	severity    model.IssueSeverity
	description string
	resolvedAt  string
}

type ratingSeed struct {
	supplier, rating, comment, category string
}

var suppliers = []supplierSeed{
	{"SteelPro Industries", "metals", "DE", "Premium steel and aluminum supplier in Germany"},
	{"MetalWorks GmbH", "metals", "DE", "Specialized in aluminum casings and metal parts"},
	{"Global Metals Ltd", "metals", "UK", "International metals supplier"},
	{"AlumniCorp", "metals", "US", "US-based aluminum manufacturer"},
	{"TechParts Asia", "electronics", "CN", "Electronic components manufacturer"},
	{"CircuitBoard Pro", "electronics", "DE", "German electronics supplier"},
	{"PolymerTech", "plastics", "DE", "Industrial plastics and polymers"},
	{"PlastiCo International", "plastics", "US", "US plastics manufacturer"},
}

var orders = []orderSeed{
	// SteelPro: many orders, never late
	{"SteelPro Industries", "metals", 5000, "2.50", "12500", "2024-01-15", "2024-01-14", false},
	{"SteelPro Industries", "metals", 8000, "2.40", "19200", "2024-02-20", "2024-02-18", false},
	{"SteelPro Industries", "metals", 10000, "2.30", "23000", "2024-03-10", "2024-03-10", false},
	{"SteelPro Industries", "metals", 7500, "2.45", "18375", "2024-04-05", "2024-04-04", false},
	{"SteelPro Industries", "metals", 12000, "2.35", "28200", "2024-05-15", "2024-05-15", false},

	{"MetalWorks GmbH", "metals", 3000, "2.80", "8400", "2024-01-20", "2024-01-22", true},
	{"MetalWorks GmbH", "metals", 5000, "2.70", "13500", "2024-02-25", "2024-02-24", false},
	{"MetalWorks GmbH", "metals", 6000, "2.75", "16500", "2024-04-10", "2024-04-09", false},

	{"Global Metals Ltd", "metals", 4000, "2.20", "8800", "2024-02-01", "2024-02-05", true},
	{"Global Metals Ltd", "metals", 5000, "2.60", "13000", "2024-03-15", "2024-03-20", true},
	{"Global Metals Ltd", "metals", 3500, "2.40", "8400", "2024-04-20", "2024-04-19", false},

	{"AlumniCorp", "metals", 2000, "2.90", "5800", "2024-05-01", "2024-05-01", false},

	{"TechParts Asia", "electronics", 10000, "0.50", "5000", "2024-03-01", "2024-03-01", false},
	{"TechParts Asia", "electronics", 15000, "0.45", "6750", "2024-04-01", "2024-04-03", true},
}

var issues = []issueSeed{
	{"Global Metals Ltd", model.IssueDelivery, model.SeverityMedium, "Shipment arrived 5 days late due to logistics issues", "2024-02-10"},
	{"Global Metals Ltd", model.IssueQuality, model.SeverityLow, "Minor surface defects on 2% of batch", "2024-03-25"},
	{"MetalWorks GmbH", model.IssueCommunication, model.SeverityLow, "Delayed response to order confirmation", "2024-01-25"},
	{"TechParts Asia", model.IssueDelivery, model.SeverityLow, "Customs delay caused late delivery", "2024-04-05"},
}

var ratings = []ratingSeed{
	{"SteelPro Industries", "5.0", "Excellent quality and on-time delivery", "metals"},
	{"SteelPro Industries", "4.8", "Great service, competitive pricing", "metals"},
	{"SteelPro Industries", "4.9", "Reliable partner for large orders", "metals"},
	{"MetalWorks GmbH", "4.2", "Good quality products", "metals"},
	{"MetalWorks GmbH", "4.0", "Decent service, slight delays sometimes", "metals"},
	{"Global Metals Ltd", "3.5", "Competitive pricing but delivery issues", "metals"},
	{"Global Metals Ltd", "3.0", "Quality inconsistent between batches", "metals"},
	{"AlumniCorp", "4.5", "Promising new supplier", "metals"},
	{"TechParts Asia", "4.3", "Good quality electronics components", "electronics"},
	{"TechParts Asia", "4.0", "Reliable for bulk orders", "electronics"},
	{"CircuitBoard Pro", "4.7", "High quality German engineering", "electronics"},
	{"PolymerTech", "4.4", "Reliable plastics supplier", "plastics"},
}

// Run clears the supplier catalogue (and suggestions pointing at it) and
// inserts the demo data in a single transaction.
func Run(ctx context.Context, db *gorm.DB) (Summary, error) {
	var sum Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearCatalogue(tx); err != nil {
			return err
		}

		ids := make(map[string]model.Supplier, len(suppliers))
		for _, s := range suppliers {
			desc := s.description
			row := model.Supplier{Name: s.name, Category: s.category, Region: s.region, Description: &desc, IsActive: true}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("supplier %q: %w", s.name, err)
			}
			ids[s.name] = row
			sum.Suppliers++
		}

		for _, o := range orders {
			row := model.PurchaseOrder{
				SupplierID:           ids[o.supplier].ID,
				Category:             o.category,
				Quantity:             o.quantity,
				UnitPrice:            decimal.RequireFromString(o.unitPrice),
				TotalPrice:           decimal.RequireFromString(o.total),
				Status:               model.OrderDelivered,
				ExpectedDeliveryDate: date(o.expected),
				ActualDeliveryDate:   date(o.actual),
				IsLate:               o.late,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("order for %q: %w", o.supplier, err)
			}
			sum.Orders++
		}

		for _, i := range issues {
			row := model.SupplierIssue{
				SupplierID:  ids[i.supplier].ID,
				Type:        i.typ,
				Severity:    i.severity,
				Description: i.description,
				Resolved:    true,
				ResolvedAt:  date(i.resolvedAt),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("issue for %q: %w", i.supplier, err)
			}
			sum.Issues++
		}

		for _, r := range ratings {
			comment, category := r.comment, r.category
			row := model.SupplierRating{
				SupplierID: ids[r.supplier].ID,
				Rating:     decimal.RequireFromString(r.rating),
				Comment:    &comment,
				Category:   &category,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("rating for %q: %w", r.supplier, err)
			}
			sum.Ratings++
		}
		return nil
	})
	return sum, err
}

// clearCatalogue deletes in foreign-key order.
func clearCatalogue(tx *gorm.DB) error {
	for _, m := range []any{
		&model.SupplierSuggestion{},
		&model.SupplierRating{},
		&model.SupplierIssue{},
		&model.PurchaseOrder{},
		&model.Supplier{},
	} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

func date(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}
