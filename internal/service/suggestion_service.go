package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"supplieriq/internal/dto"
	"supplieriq/internal/event"
	"supplieriq/internal/infra"
	"supplieriq/internal/model"
	"supplieriq/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SuggestionCacheSubscriber is the bus name of the cache warmer.
const SuggestionCacheSubscriber = "suggestion_cache"

const suggestionCachePrefix = "suggestions:"

// SuggestionService reads ranked suggestions, optionally through Redis.
// Suggestion sets never change once written, so cached entries only expire by TTL.
type SuggestionService interface {
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]dto.SuggestionResponse, error)
	WarmCache(ctx context.Context, ev event.SuggestionsReady) error
}

type suggestionService struct {
	repo    repository.SupplierSuggestionRepository
	rdb     *redis.Client
	ttl     time.Duration
	breaker *infra.CircuitBreaker
	metrics *infra.Metrics
}

// NewSuggestionService builds the reader. A nil rdb disables caching; while
// breaker is open Redis is skipped and reads go straight to the database.
func NewSuggestionService(
	repo repository.SupplierSuggestionRepository,
	rdb *redis.Client,
	ttl time.Duration,
	breaker *infra.CircuitBreaker,
	metrics *infra.Metrics,
) SuggestionService {
	return &suggestionService{repo: repo, rdb: rdb, ttl: ttl, breaker: breaker, metrics: metrics}
}

// ListByRequest returns suggestions by rank ascending. An unknown, still processing
// or candidate-less request all yield an empty list.
func (s *suggestionService) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]dto.SuggestionResponse, error) {
	if cached, ok := s.fromCache(ctx, requestID); ok {
		return cached, nil
	}

	resp, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, requestID, resp)
	return resp, nil
}

// WarmCache loads a freshly completed suggestion set into Redis.
func (s *suggestionService) WarmCache(ctx context.Context, ev event.SuggestionsReady) error {
	if s.rdb == nil || ev.Count == 0 {
		return nil
	}
	resp, err := s.load(ctx, ev.RequestID)
	if err != nil {
		return err
	}
	s.store(ctx, ev.RequestID, resp)
	log.Debug().
		Str("request_id", ev.RequestID.String()).
		Int("suggestions", len(resp)).
		Msg("suggestion_cache: warmed")
	return nil
}

func (s *suggestionService) load(ctx context.Context, requestID uuid.UUID) ([]dto.SuggestionResponse, error) {
	rows, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find suggestions: %w", err)
	}
	resp := make([]dto.SuggestionResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, toSuggestionResponse(&rows[i]))
	}
	return resp, nil
}

func (s *suggestionService) fromCache(ctx context.Context, requestID uuid.UUID) ([]dto.SuggestionResponse, bool) {
	if s.rdb == nil {
		return nil, false
	}

	var raw []byte
	hit := false
	err := s.breaker.Execute(func() error {
		b, err := s.rdb.Get(ctx, suggestionCachePrefix+requestID.String()).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, hit = b, true
		return nil
	})
	switch {
	case errors.Is(err, infra.ErrCircuitOpen):
		s.metrics.CacheLookup("skipped")
		return nil, false
	case err != nil:
		log.Warn().Err(err).Str("request_id", requestID.String()).Msg("suggestion_cache: get failed")
		s.metrics.CacheLookup("error")
		return nil, false
	case !hit:
		s.metrics.CacheLookup("miss")
		return nil, false
	}

	var resp []dto.SuggestionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Err(err).Str("request_id", requestID.String()).Msg("suggestion_cache: corrupt entry")
		s.metrics.CacheLookup("error")
		return nil, false
	}
	s.metrics.CacheLookup("hit")
	return resp, true
}

// store caches non-empty sets only; an empty set may still be in progress.
func (s *suggestionService) store(ctx context.Context, requestID uuid.UUID, resp []dto.SuggestionResponse) {
	if s.rdb == nil || len(resp) == 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	err = s.breaker.Execute(func() error {
		return s.rdb.Set(context.WithoutCancel(ctx), suggestionCachePrefix+requestID.String(), b, s.ttl).Err()
	})
	if err != nil && !errors.Is(err, infra.ErrCircuitOpen) {
		log.Warn().Err(err).Str("request_id", requestID.String()).Msg("suggestion_cache: set failed")
	}
}

func toSuggestionResponse(s *model.SupplierSuggestion) dto.SuggestionResponse {
	resp := dto.SuggestionResponse{
		ID:          s.ID.String(),
		RequestID:   s.RequestID.String(),
		SupplierID:  s.SupplierID.String(),
		Rank:        s.Rank,
		MatchScore:  s.MatchScore,
		RiskScore:   s.RiskScore,
		Explanation: s.Explanation,
		CreatedAt:   s.CreatedAt,
	}
	if s.Supplier != nil {
		resp.Supplier = &dto.SupplierSummary{
			ID:       s.Supplier.ID.String(),
			Name:     s.Supplier.Name,
			Category: s.Supplier.Category,
			Region:   s.Supplier.Region,
		}
	}
	return resp
}
