package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supplieriq/internal/config"
	"supplieriq/internal/dto"
	"supplieriq/internal/event"
	"supplieriq/internal/infra"
	"supplieriq/internal/model"
	"supplieriq/internal/repository"
	"supplieriq/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	db     *gorm.DB
	bus    *event.Bus
	engine *gin.Engine
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func setupTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	db := newTestDB(t)
	reg := prometheus.NewRegistry()
	metrics := infra.NewMetrics("test", reg)
	bus := event.NewBus(metrics)

	w := worker.NewSuggestionWorker(
		repository.NewPurchaseRequestRepository(db),
		repository.NewSupplierRepository(db),
		repository.NewPurchaseOrderRepository(db),
		repository.NewSupplierIssueRepository(db),
		repository.NewSupplierRatingRepository(db),
		repository.NewSupplierSuggestionRepository(db),
		bus, worker.NewPool(2), metrics,
	)
	w.Subscribe()

	return &testEnv{db: db, bus: bus, engine: New(cfg, db, nil, bus, metrics, reg)}
}

func testConfig() *config.Config {
	return &config.Config{Env: "test", RateLimit: 1000, CORSOrigin: "*"}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, e.bus.Drain(ctx))
}

func (e *testEnv) seedSupplier(t *testing.T, name, category, region string, orders, late int, ratings ...string) model.Supplier {
	t.Helper()
	s := model.Supplier{Name: name, Category: category, Region: region, IsActive: true}
	require.NoError(t, e.db.Create(&s).Error)
	for i := 0; i < orders; i++ {
		o := model.PurchaseOrder{
			SupplierID: s.ID,
			Category:   category,
			Quantity:   10,
			UnitPrice:  decimal.NewFromInt(50),
			TotalPrice: decimal.NewFromInt(500),
			Status:     model.OrderDelivered,
			IsLate:     i < late,
		}
		require.NoError(t, e.db.Create(&o).Error)
	}
	for _, v := range ratings {
		r := model.SupplierRating{SupplierID: s.ID, Rating: decimal.RequireFromString(v)}
		require.NoError(t, e.db.Create(&r).Error)
	}
	return s
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRouter_Health(t *testing.T) {
	env := setupTestEnv(t, testConfig())

	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, w.Body.String())
}

func TestRouter_RequestLifecycle(t *testing.T) {
	env := setupTestEnv(t, testConfig())

	x := env.seedSupplier(t, "Supplier X", "metals", "DE", 5, 0, "4.80", "5.00")
	y := env.seedSupplier(t, "Supplier Y", "metals", "DE", 3, 2, "3.00", "3.50")
	for i := 0; i < 2; i++ {
		issue := model.SupplierIssue{SupplierID: y.ID, Type: model.IssueDelivery, Severity: model.SeverityHigh, Description: "late"}
		require.NoError(t, env.db.Create(&issue).Error)
	}
	env.seedSupplier(t, "Plastic Inc", "plastics", "DE", 0, 0)

	// 1. Create request
	w := env.do(t, http.MethodPost, "/v1/requests", map[string]any{
		"category":    "metals",
		"description": "steel beams",
		"quantity":    100,
		"budget":      25000,
		"urgency":     "high",
		"region":      "DE",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var created dto.PurchaseRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)

	// 2. Wait for the pipeline
	env.drain(t)

	// 3. Request is completed
	w = env.do(t, http.MethodGet, "/v1/requests/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched dto.PurchaseRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "completed", fetched.Status)

	// 4. Ranked suggestions
	w = env.do(t, http.MethodGet, "/v1/requests/"+created.ID+"/suggestions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []dto.SuggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, x.ID.String(), got[0].SupplierID)
	assert.Equal(t, 1, got[0].Rank)
	assert.InDelta(t, 0.85, got[0].MatchScore, 1e-4)
	require.NotNil(t, got[0].Supplier)
	assert.Equal(t, "Supplier X", got[0].Supplier.Name)

	assert.Equal(t, y.ID.String(), got[1].SupplierID)
	assert.Equal(t, 2, got[1].Rank)
	assert.InDelta(t, 0.79, got[1].MatchScore, 1e-4)
	assert.Greater(t, got[1].RiskScore, got[0].RiskScore)
}

func TestRouter_NoCandidates_EmptySuggestions(t *testing.T) {
	env := setupTestEnv(t, testConfig())

	w := env.do(t, http.MethodPost, "/v1/requests", map[string]any{
		"category": "textiles", "description": "cotton", "quantity": 1, "budget": 10, "region": "FR",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.PurchaseRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	env.drain(t)

	w = env.do(t, http.MethodGet, "/v1/requests/"+created.ID+"/suggestions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/requests/"+created.ID, nil, "")
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestRouter_UnknownRequest(t *testing.T) {
	env := setupTestEnv(t, testConfig())

	w := env.do(t, http.MethodGet, "/v1/requests/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"purchase request not found"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/requests/"+uuid.NewString()+"/suggestions", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_JWTRequiredWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "router-secret"
	env := setupTestEnv(t, cfg)

	w := env.do(t, http.MethodGet, "/v1/requests/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "buyer-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	w = env.do(t, http.MethodGet, "/v1/requests/"+uuid.NewString(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// health stays public
	w = env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t, testConfig())

	env.do(t, http.MethodGet, "/health", nil, "")
	w := env.do(t, http.MethodGet, "/metrics", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
