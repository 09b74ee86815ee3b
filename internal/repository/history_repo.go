package repository

import (
	"context"

	"supplieriq/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier history is append-only; these repositories expose full per-supplier reads.

type PurchaseOrderRepository interface {
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseOrder, error)
}

type SupplierIssueRepository interface {
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierIssue, error)
}

type SupplierRatingRepository interface {
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierRating, error)
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

type supplierIssueRepo struct{ db *gorm.DB }

func NewSupplierIssueRepository(db *gorm.DB) SupplierIssueRepository {
	return &supplierIssueRepo{db: db}
}

func (r *supplierIssueRepo) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierIssue, error) {
	var issues []model.SupplierIssue
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&issues).Error
	return issues, err
}

type supplierRatingRepo struct{ db *gorm.DB }

func NewSupplierRatingRepository(db *gorm.DB) SupplierRatingRepository {
	return &supplierRatingRepo{db: db}
}

func (r *supplierRatingRepo) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierRating, error) {
	var ratings []model.SupplierRating
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&ratings).Error
	return ratings, err
}
