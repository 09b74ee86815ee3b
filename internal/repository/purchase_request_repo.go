package repository

import (
	"context"

	"supplieriq/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRequestRepository interface {
	Create(ctx context.Context, r *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error
}

type purchaseRequestRepo struct{ db *gorm.DB }

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepo{db: db}
}

func (r *purchaseRequestRepo) Create(ctx context.Context, pr *model.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *purchaseRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pr).Error; err != nil {
		return nil, notFound(err)
	}
	return &pr, nil
}

func (r *purchaseRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&model.PurchaseRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
