package router

import (
	"time"

	"supplieriq/internal/config"
	"supplieriq/internal/event"
	"supplieriq/internal/handler"
	"supplieriq/internal/infra"
	"supplieriq/internal/middleware"
	"supplieriq/internal/repository"
	"supplieriq/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires the HTTP side of the service and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis; services publish on bus.
// rdb may be nil, which disables the suggestion cache.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, bus *event.Bus, metrics *infra.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.HTTPMetrics(metrics))
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	requestRepo := repository.NewPurchaseRequestRepository(db)
	suggestionRepo := repository.NewSupplierSuggestionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	requestSvc := service.NewPurchaseRequestService(requestRepo, bus)
	cacheBreaker := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.CacheBreakerThreshold,
		OpenTimeout:      cfg.CacheBreakerTimeout,
	})
	cacheBreaker.OnTransition(func(from, to infra.CBState) {
		log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("router: suggestion cache breaker changed state")
	})
	suggestionSvc := service.NewSuggestionService(suggestionRepo, rdb, cfg.SuggestionCacheTTL, cacheBreaker, metrics)
	if rdb != nil {
		event.On(bus, service.SuggestionCacheSubscriber, suggestionSvc.WarmCache)
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	requestsH := handler.NewRequestsHandler(requestSvc)
	suggestionsH := handler.NewSuggestionsHandler(suggestionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	if cfg.JWTSecret != "" {
		v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	} else {
		log.Warn().Msg("router: JWT_SECRET not set, /v1 is unauthenticated")
	}
	{
		v1.POST("/requests", requestsH.Create)
		v1.GET("/requests/:id", requestsH.GetByID)
		v1.GET("/requests/:id/suggestions", suggestionsH.List)
	}

	return r
}
