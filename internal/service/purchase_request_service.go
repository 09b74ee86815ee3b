package service

import (
	"context"
	"errors"
	"fmt"

	"supplieriq/internal/dto"
	"supplieriq/internal/event"
	"supplieriq/internal/model"
	"supplieriq/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrPurchaseRequestNotFound = errors.New("purchase request not found")

type PurchaseRequestService interface {
	Create(ctx context.Context, req dto.CreatePurchaseRequest) (*dto.PurchaseRequestResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PurchaseRequestResponse, error)
}

type purchaseRequestService struct {
	repo repository.PurchaseRequestRepository
	bus  *event.Bus
}

func NewPurchaseRequestService(repo repository.PurchaseRequestRepository, bus *event.Bus) PurchaseRequestService {
	return &purchaseRequestService{repo: repo, bus: bus}
}

// Create stores a pending request and announces it on the bus.
// It returns before any suggestion work has started.
func (s *purchaseRequestService) Create(ctx context.Context, req dto.CreatePurchaseRequest) (*dto.PurchaseRequestResponse, error) {
	urgency := model.Urgency(req.Urgency)
	if urgency == "" {
		urgency = model.UrgencyMedium
	}

	pr := &model.PurchaseRequest{
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
		Urgency:     urgency,
		Budget:      req.Budget,
		Region:      req.Region,
		Status:      model.RequestPending,
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, fmt.Errorf("create purchase request: %w", err)
	}

	s.bus.Publish(ctx, event.RequestCreated{RequestID: pr.ID})
	log.Info().
		Str("request_id", pr.ID.String()).
		Str("category", pr.Category).
		Str("region", pr.Region).
		Msg("purchase_request: created")

	return toPurchaseRequestResponse(pr), nil
}

func (s *purchaseRequestService) GetByID(ctx context.Context, id uuid.UUID) (*dto.PurchaseRequestResponse, error) {
	pr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPurchaseRequestNotFound
		}
		return nil, fmt.Errorf("find purchase request: %w", err)
	}
	return toPurchaseRequestResponse(pr), nil
}

func toPurchaseRequestResponse(pr *model.PurchaseRequest) *dto.PurchaseRequestResponse {
	return &dto.PurchaseRequestResponse{
		ID:          pr.ID.String(),
		Category:    pr.Category,
		Description: pr.Description,
		Quantity:    pr.Quantity,
		Budget:      pr.Budget,
		Urgency:     string(pr.Urgency),
		Region:      pr.Region,
		Status:      string(pr.Status),
		CreatedAt:   pr.CreatedAt,
		UpdatedAt:   pr.UpdatedAt,
	}
}
