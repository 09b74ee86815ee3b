package repository

import (
	"context"

	"supplieriq/internal/model"

	"gorm.io/gorm"
)

type SupplierRepository interface {
	FindActiveByCategory(ctx context.Context, category string) ([]model.Supplier, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

// FindActiveByCategory matches the stored category exactly (case-sensitive).
// Results are ordered by name, then id, so rankings with tied scores are reproducible.
func (r *supplierRepo) FindActiveByCategory(ctx context.Context, category string) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("name ASC").Order("id ASC").
		Find(&suppliers).Error
	return suppliers, err
}
