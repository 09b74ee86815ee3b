package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"supplieriq/internal/event"
	"supplieriq/internal/model"
	"supplieriq/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory repository stubs ───────────────────────────────────────────────

type stubRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.PurchaseRequest
	statuses []model.RequestStatus
	findErr  error
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{requests: make(map[uuid.UUID]*model.PurchaseRequest)}
}

func (r *stubRequestRepo) Create(_ context.Context, req *model.PurchaseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	r.requests[req.ID] = req
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *stubRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *stubRequestRepo) history() []model.RequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RequestStatus(nil), r.statuses...)
}

var _ repository.PurchaseRequestRepository = (*stubRequestRepo)(nil)

type stubSupplierRepo struct {
	suppliers []model.Supplier
	err       error
}

func (r *stubSupplierRepo) FindActiveByCategory(_ context.Context, category string) ([]model.Supplier, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Supplier
	for _, s := range r.suppliers {
		if s.IsActive && s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

type stubOrderRepo struct {
	orders map[uuid.UUID][]model.PurchaseOrder
	err    error
}

func (r *stubOrderRepo) FindBySupplier(_ context.Context, id uuid.UUID) ([]model.PurchaseOrder, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.orders[id], nil
}

var _ repository.PurchaseOrderRepository = (*stubOrderRepo)(nil)

type stubIssueRepo struct {
	issues map[uuid.UUID][]model.SupplierIssue
}

func (r *stubIssueRepo) FindBySupplier(_ context.Context, id uuid.UUID) ([]model.SupplierIssue, error) {
	return r.issues[id], nil
}

var _ repository.SupplierIssueRepository = (*stubIssueRepo)(nil)

type stubRatingRepo struct {
	ratings map[uuid.UUID][]model.SupplierRating
}

func (r *stubRatingRepo) FindBySupplier(_ context.Context, id uuid.UUID) ([]model.SupplierRating, error) {
	return r.ratings[id], nil
}

var _ repository.SupplierRatingRepository = (*stubRatingRepo)(nil)

type stubSuggestionRepo struct {
	mu    sync.Mutex
	saved map[uuid.UUID][]model.SupplierSuggestion
	calls int
	err   error
}

func (r *stubSuggestionRepo) SaveMany(_ context.Context, s []model.SupplierSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	if len(s) == 0 {
		return nil
	}
	r.saved[s[0].RequestID] = append(r.saved[s[0].RequestID], s...)
	return nil
}

func (r *stubSuggestionRepo) FindByRequest(_ context.Context, id uuid.UUID) ([]model.SupplierSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SupplierSuggestion(nil), r.saved[id]...), nil
}

var _ repository.SupplierSuggestionRepository = (*stubSuggestionRepo)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	requests    *stubRequestRepo
	suppliers   *stubSupplierRepo
	orders      *stubOrderRepo
	issues      *stubIssueRepo
	ratings     *stubRatingRepo
	suggestions *stubSuggestionRepo
	bus         *event.Bus
	worker      *SuggestionWorker
}

func newFixture() *fixture {
	f := &fixture{
		requests:    newStubRequestRepo(),
		suppliers:   &stubSupplierRepo{},
		orders:      &stubOrderRepo{orders: map[uuid.UUID][]model.PurchaseOrder{}},
		issues:      &stubIssueRepo{issues: map[uuid.UUID][]model.SupplierIssue{}},
		ratings:     &stubRatingRepo{ratings: map[uuid.UUID][]model.SupplierRating{}},
		suggestions: &stubSuggestionRepo{saved: map[uuid.UUID][]model.SupplierSuggestion{}},
		bus:         event.NewBus(nil),
	}
	f.worker = NewSuggestionWorker(
		f.requests, f.suppliers, f.orders, f.issues, f.ratings, f.suggestions,
		f.bus, NewPool(4), nil,
	)
	return f
}

func (f *fixture) addSupplier(name, category, region string) model.Supplier {
	s := model.Supplier{ID: uuid.New(), Name: name, Category: category, Region: region, IsActive: true}
	f.suppliers.suppliers = append(f.suppliers.suppliers, s)
	return s
}

func (f *fixture) addOrders(supplierID uuid.UUID, category string, n, late int) {
	for i := 0; i < n; i++ {
		f.orders.orders[supplierID] = append(f.orders.orders[supplierID], model.PurchaseOrder{
			ID:         uuid.New(),
			SupplierID: supplierID,
			Category:   category,
			Quantity:   10,
			UnitPrice:  decimal.NewFromInt(100),
			TotalPrice: decimal.NewFromInt(1000),
			Status:     model.OrderDelivered,
			IsLate:     i < late,
		})
	}
}

func (f *fixture) addRatings(supplierID uuid.UUID, values ...string) {
	for _, v := range values {
		f.ratings.ratings[supplierID] = append(f.ratings.ratings[supplierID], model.SupplierRating{
			ID:         uuid.New(),
			SupplierID: supplierID,
			Rating:     decimal.RequireFromString(v),
		})
	}
}

func (f *fixture) addIssues(supplierID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		f.issues.issues[supplierID] = append(f.issues.issues[supplierID], model.SupplierIssue{
			ID:          uuid.New(),
			SupplierID:  supplierID,
			Type:        model.IssueDelivery,
			Severity:    model.SeverityMedium,
			Description: "shipment delayed",
		})
	}
}

func (f *fixture) newRequest(t *testing.T, category, region string) *model.PurchaseRequest {
	t.Helper()
	req := &model.PurchaseRequest{
		Category:    category,
		Description: "steel sheets",
		Quantity:    50,
		Urgency:     model.UrgencyMedium,
		Budget:      decimal.NewFromInt(5000),
		Region:      region,
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ── Pipeline ─────────────────────────────────────────────────────────────────

func TestSuggestionWorker_EndToEnd_RanksReliableSupplierFirst(t *testing.T) {
	f := newFixture()
	f.worker.Subscribe()

	y := f.addSupplier("Supplier Y", "metals", "DE")
	f.addOrders(y.ID, "metals", 3, 2)
	f.addIssues(y.ID, 2)
	f.addRatings(y.ID, "3.00", "3.50")

	x := f.addSupplier("Supplier X", "metals", "DE")
	f.addOrders(x.ID, "metals", 5, 0)
	f.addRatings(x.ID, "4.80", "5.00")

	f.addSupplier("Plastics Co", "plastics", "DE")

	ready := make(chan event.SuggestionsReady, 1)
	event.On(f.bus, "test_listener", func(_ context.Context, ev event.SuggestionsReady) error {
		ready <- ev
		return nil
	})

	req := f.newRequest(t, "metals", "DE")
	results, err := f.bus.Publish(context.Background(), event.RequestCreated{RequestID: req.ID}).Wait(waitCtx(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SuggestionSubscriber, results[0].Subscriber)
	require.NoError(t, results[0].Err)

	assert.Equal(t, []model.RequestStatus{model.RequestProcessing, model.RequestCompleted}, f.requests.history())

	saved, err := f.suggestions.FindByRequest(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, x.ID, saved[0].SupplierID)
	assert.Equal(t, 1, saved[0].Rank)
	assert.InDelta(t, 0.85, saved[0].MatchScore, 1e-9)
	assert.LessOrEqual(t, saved[0].RiskScore, 1)
	assert.Contains(t, saved[0].Explanation, "No recorded issues")

	assert.Equal(t, y.ID, saved[1].SupplierID)
	assert.Equal(t, 2, saved[1].Rank)
	assert.InDelta(t, 0.79, saved[1].MatchScore, 1e-9)
	assert.Equal(t, 65, saved[1].RiskScore)
	assert.Greater(t, saved[1].RiskScore, saved[0].RiskScore)

	select {
	case ev := <-ready:
		assert.Equal(t, req.ID, ev.RequestID)
		assert.Equal(t, 2, ev.Count)
	case <-time.After(5 * time.Second):
		t.Fatal("SuggestionsReady was not published")
	}
}

func TestSuggestionWorker_RequestNotFound_NoMutation(t *testing.T) {
	f := newFixture()
	f.addSupplier("Supplier X", "metals", "DE")

	err := f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: uuid.New()})

	require.ErrorIs(t, err, ErrRequestNotFound)
	assert.Empty(t, f.requests.history())
	assert.Zero(t, f.suggestions.calls)
}

func TestSuggestionWorker_LoadRequestError_NoMutation(t *testing.T) {
	f := newFixture()
	req := f.newRequest(t, "metals", "DE")
	f.requests.findErr = errors.New("connection reset")

	err := f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRequestNotFound)
	assert.Empty(t, f.requests.history())
}

func TestSuggestionWorker_NoCandidates_CompletesEmpty(t *testing.T) {
	f := newFixture()
	f.addSupplier("Plastics Co", "plastics", "DE")
	f.addSupplier("Dormant Metals", "metals", "DE")
	f.suppliers.suppliers[len(f.suppliers.suppliers)-1].IsActive = false

	req := f.newRequest(t, "metals", "DE")
	err := f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID})

	require.NoError(t, err)
	assert.Equal(t, []model.RequestStatus{model.RequestProcessing, model.RequestCompleted}, f.requests.history())
	saved, _ := f.suggestions.FindByRequest(context.Background(), req.ID)
	assert.Empty(t, saved)
}

func TestSuggestionWorker_CategoryIsCaseSensitiveForCandidates(t *testing.T) {
	f := newFixture()
	f.addSupplier("Upper Metals", "Metals", "DE")
	lower := f.addSupplier("Lower Metals", "metals", "DE")
	f.addOrders(lower.ID, "METALS", 10, 0)

	req := f.newRequest(t, "metals", "DE")
	require.NoError(t, f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID}))

	saved, _ := f.suggestions.FindByRequest(context.Background(), req.ID)
	require.Len(t, saved, 1)
	assert.Equal(t, lower.ID, saved[0].SupplierID)
	// order categories compare case-insensitively, so experience is saturated
	assert.InDelta(t, 1.0, saved[0].MatchScore, 1e-9)
}

func TestSuggestionWorker_SupplierLoadFails_MarksFailed(t *testing.T) {
	f := newFixture()
	f.suppliers.err = errors.New("db down")
	req := f.newRequest(t, "metals", "DE")

	err := f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load suppliers")
	assert.Equal(t, []model.RequestStatus{model.RequestProcessing, model.RequestFailed}, f.requests.history())
	assert.Zero(t, f.suggestions.calls)
}

func TestSuggestionWorker_HistoryLoadFails_MarksFailed(t *testing.T) {
	f := newFixture()
	f.addSupplier("Supplier X", "metals", "DE")
	f.addSupplier("Supplier Y", "metals", "DE")
	f.orders.err = errors.New("timeout")
	req := f.newRequest(t, "metals", "DE")

	err := f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load orders")
	assert.Equal(t, []model.RequestStatus{model.RequestProcessing, model.RequestFailed}, f.requests.history())
	assert.Zero(t, f.suggestions.calls)
}

func TestSuggestionWorker_SaveFails_MarksFailedAndReportsOnDelivery(t *testing.T) {
	f := newFixture()
	f.worker.Subscribe()
	f.addSupplier("Supplier X", "metals", "DE")
	f.suggestions.err = errors.New("unique violation")
	req := f.newRequest(t, "metals", "DE")

	d := f.bus.Publish(context.Background(), event.RequestCreated{RequestID: req.ID})
	_, err := d.Wait(waitCtx(t))
	require.NoError(t, err)

	require.Error(t, d.Err())
	assert.Contains(t, d.Err().Error(), "save suggestions")
	assert.Equal(t, []model.RequestStatus{model.RequestProcessing, model.RequestFailed}, f.requests.history())
}

func TestSuggestionWorker_ManyCandidates_ContiguousRanks(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		s := f.addSupplier(uuid.NewString(), "electronics", []string{"DE", "FR", "US"}[i%3])
		f.addOrders(s.ID, "electronics", i%12, i%4)
		f.addIssues(s.ID, i%3)
	}
	req := f.newRequest(t, "electronics", "FR")

	require.NoError(t, f.worker.HandleRequestCreated(context.Background(), event.RequestCreated{RequestID: req.ID}))

	saved, _ := f.suggestions.FindByRequest(context.Background(), req.ID)
	require.Len(t, saved, 25)
	seen := make(map[uuid.UUID]bool)
	for i, s := range saved {
		assert.Equal(t, i+1, s.Rank)
		assert.Equal(t, req.ID, s.RequestID)
		assert.False(t, seen[s.SupplierID], "supplier ranked twice")
		seen[s.SupplierID] = true
		if i > 0 {
			prev := saved[i-1]
			assert.True(t,
				prev.MatchScore > s.MatchScore ||
					(prev.MatchScore == s.MatchScore && prev.RiskScore <= s.RiskScore),
				"rank %d out of order", s.Rank)
		}
	}
}

// ── Ranking ──────────────────────────────────────────────────────────────────

func TestRankCandidates_TieBreakOnRiskAndStable(t *testing.T) {
	a := model.Supplier{ID: uuid.New(), Name: "A"}
	b := model.Supplier{ID: uuid.New(), Name: "B"}
	c := model.Supplier{ID: uuid.New(), Name: "C"}
	d := model.Supplier{ID: uuid.New(), Name: "D"}
	reqID := uuid.New()

	cs := []candidate{
		{supplier: a, matchScore: 0.7},
		{supplier: b, matchScore: 0.7},
		{supplier: c, matchScore: 0.9},
		{supplier: d, matchScore: 0.7},
	}
	cs[0].risk.Score = 40
	cs[1].risk.Score = 20
	cs[2].risk.Score = 90
	cs[3].risk.Score = 20

	out := rankCandidates(reqID, cs)

	require.Len(t, out, 4)
	assert.Equal(t, []uuid.UUID{c.ID, b.ID, d.ID, a.ID},
		[]uuid.UUID{out[0].SupplierID, out[1].SupplierID, out[2].SupplierID, out[3].SupplierID})
	for i, s := range out {
		assert.Equal(t, i+1, s.Rank)
		assert.Equal(t, reqID, s.RequestID)
	}
	// input untouched
	assert.Equal(t, a.ID, cs[0].supplier.ID)
}

func TestRankCandidates_Empty(t *testing.T) {
	assert.Empty(t, rankCandidates(uuid.New(), nil))
}
