package worker

// suggestion_worker.go
// Generates ranked supplier suggestions when a purchase request is created.
// Runs as a subscriber of event.RequestCreated on the in-process bus.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supplieriq/internal/event"
	"supplieriq/internal/infra"
	"supplieriq/internal/model"
	"supplieriq/internal/repository"
	"supplieriq/internal/scoring"

	"github.com/rs/zerolog/log"
)

// SuggestionSubscriber is the name the worker registers under on the bus.
const SuggestionSubscriber = "suggestion_worker"

// ErrRequestNotFound aborts a run whose request id no longer resolves.
var ErrRequestNotFound = errors.New("purchase request not found")

// SuggestionWorker scores, ranks and stores suggestions for one request per event.
type SuggestionWorker struct {
	requests    repository.PurchaseRequestRepository
	suppliers   repository.SupplierRepository
	orders      repository.PurchaseOrderRepository
	issues      repository.SupplierIssueRepository
	ratings     repository.SupplierRatingRepository
	suggestions repository.SupplierSuggestionRepository
	bus         *event.Bus
	pool        *Pool
	metrics     *infra.Metrics
}

// NewSuggestionWorker wires all dependencies for the suggestion pipeline.
func NewSuggestionWorker(
	requests repository.PurchaseRequestRepository,
	suppliers repository.SupplierRepository,
	orders repository.PurchaseOrderRepository,
	issues repository.SupplierIssueRepository,
	ratings repository.SupplierRatingRepository,
	suggestions repository.SupplierSuggestionRepository,
	bus *event.Bus,
	pool *Pool,
	metrics *infra.Metrics,
) *SuggestionWorker {
	return &SuggestionWorker{
		requests:    requests,
		suppliers:   suppliers,
		orders:      orders,
		issues:      issues,
		ratings:     ratings,
		suggestions: suggestions,
		bus:         bus,
		pool:        pool,
		metrics:     metrics,
	}
}

// Subscribe registers the worker for RequestCreated events on its bus.
func (w *SuggestionWorker) Subscribe() {
	event.On(w.bus, SuggestionSubscriber, w.HandleRequestCreated)
	log.Info().Msg("suggestion_worker: subscribed to RequestCreated")
}

// HandleRequestCreated runs the pipeline for one request:
//  1. Load the request (absent → ErrRequestNotFound, nothing changes)
//  2. Mark it processing
//  3. Load active suppliers of the request category
//  4. Load each candidate's orders, issues and ratings through the pool
//  5. Score match and risk
//  6. Sort by match desc, risk asc and assign ranks
//  7. Persist the ranking in one transaction
//  8. Mark the request completed and publish SuggestionsReady
//
// Any error after step 2 moves the request to failed.
func (w *SuggestionWorker) HandleRequestCreated(ctx context.Context, ev event.RequestCreated) error {
	start := time.Now()
	id := ev.RequestID
	log.Info().Str("request_id", id.String()).Msg("suggestion_worker: processing RequestCreated")

	req, err := w.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error().Str("request_id", id.String()).Msg("suggestion_worker: request not found")
			w.metrics.PipelineRun("not_found", time.Since(start), 0)
			return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
		}
		log.Error().Err(err).Str("request_id", id.String()).Msg("suggestion_worker: failed to load request")
		w.metrics.PipelineRun("failed", time.Since(start), 0)
		return fmt.Errorf("load request %s: %w", id, err)
	}

	if err := w.requests.UpdateStatus(ctx, id, model.RequestProcessing); err != nil {
		log.Error().Err(err).Str("request_id", id.String()).Msg("suggestion_worker: failed to mark request processing")
		w.metrics.PipelineRun("failed", time.Since(start), 0)
		return fmt.Errorf("mark processing: %w", err)
	}

	ranked, err := w.generate(ctx, req)
	if err != nil {
		return w.fail(ctx, req, start, err)
	}
	if err := w.suggestions.SaveMany(ctx, ranked); err != nil {
		return w.fail(ctx, req, start, fmt.Errorf("save suggestions: %w", err))
	}
	if err := w.requests.UpdateStatus(ctx, id, model.RequestCompleted); err != nil {
		return w.fail(ctx, req, start, fmt.Errorf("mark completed: %w", err))
	}

	w.metrics.PipelineRun("completed", time.Since(start), len(ranked))
	log.Info().
		Str("request_id", id.String()).
		Int("suggestions", len(ranked)).
		Dur("elapsed", time.Since(start)).
		Msg("suggestion_worker: suggestions generated")

	w.bus.Publish(ctx, event.SuggestionsReady{RequestID: id, Count: len(ranked)})
	return nil
}

// generate loads and scores every candidate, then ranks them.
func (w *SuggestionWorker) generate(ctx context.Context, req *model.PurchaseRequest) ([]model.SupplierSuggestion, error) {
	suppliers, err := w.suppliers.FindActiveByCategory(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	log.Info().
		Str("request_id", req.ID.String()).
		Str("category", req.Category).
		Int("suppliers", len(suppliers)).
		Msg("suggestion_worker: candidate suppliers loaded")

	scored := make([]candidate, len(suppliers))
	err = w.pool.Run(ctx, len(suppliers), func(ctx context.Context, i int) error {
		c, err := w.score(ctx, req, suppliers[i])
		if err != nil {
			return fmt.Errorf("supplier %s: %w", suppliers[i].ID, err)
		}
		scored[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rankCandidates(req.ID, scored), nil
}

func (w *SuggestionWorker) score(ctx context.Context, req *model.PurchaseRequest, s model.Supplier) (candidate, error) {
	orders, err := w.orders.FindBySupplier(ctx, s.ID)
	if err != nil {
		return candidate{}, fmt.Errorf("load orders: %w", err)
	}
	issues, err := w.issues.FindBySupplier(ctx, s.ID)
	if err != nil {
		return candidate{}, fmt.Errorf("load issues: %w", err)
	}
	ratings, err := w.ratings.FindBySupplier(ctx, s.ID)
	if err != nil {
		return candidate{}, fmt.Errorf("load ratings: %w", err)
	}

	return candidate{
		supplier:   s,
		matchScore: scoring.MatchScore(req, &s, scoring.CountInCategory(orders, req.Category)),
		risk:       scoring.RiskScore(orders, issues, ratings),
	}, nil
}

// fail logs err, moves the request to failed and returns err.
func (w *SuggestionWorker) fail(ctx context.Context, req *model.PurchaseRequest, start time.Time, err error) error {
	log.Error().
		Err(err).
		Str("request_id", req.ID.String()).
		Msg("suggestion_worker: run failed")

	if uerr := w.requests.UpdateStatus(context.WithoutCancel(ctx), req.ID, model.RequestFailed); uerr != nil {
		log.Error().
			Err(uerr).
			Str("request_id", req.ID.String()).
			Msg("suggestion_worker: failed to mark request failed")
	}
	w.metrics.PipelineRun("failed", time.Since(start), 0)
	return err
}
