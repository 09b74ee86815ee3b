package repository

import (
	"context"

	"supplieriq/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierSuggestionRepository interface {
	SaveMany(ctx context.Context, suggestions []model.SupplierSuggestion) error
	FindByRequest(ctx context.Context, requestID uuid.UUID) ([]model.SupplierSuggestion, error)
}

type supplierSuggestionRepo struct{ db *gorm.DB }

func NewSupplierSuggestionRepository(db *gorm.DB) SupplierSuggestionRepository {
	return &supplierSuggestionRepo{db: db}
}

// SaveMany inserts the whole ranking in one transaction: either every rank is stored or none.
func (r *supplierSuggestionRepo) SaveMany(ctx context.Context, suggestions []model.SupplierSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Supplier").CreateInBatches(&suggestions, 100).Error
	})
}

// FindByRequest returns the ranking ordered by rank ascending with suppliers preloaded.
func (r *supplierSuggestionRepo) FindByRequest(ctx context.Context, requestID uuid.UUID) ([]model.SupplierSuggestion, error) {
	var suggestions []model.SupplierSuggestion
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("rank ASC").
		Preload("Supplier").
		Find(&suggestions).Error
	return suggestions, err
}
