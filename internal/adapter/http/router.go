package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	"github.com/iho/cashledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional pieces left nil
// are skipped.
type RouterConfig struct {
	BalanceHandler         *handler.BalanceHandler
	CurrencyHandler        *handler.CurrencyHandler
	CurrencyBalanceHandler *handler.CurrencyBalanceHandler
	TransactionHandler     *handler.TransactionHandler
	LedgerHandler          *handler.LedgerHandler
	HealthHandler          *handler.HealthHandler

	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      middleware.HTTPMetrics
	ReplayRecorder   middleware.ReplayRecorder
	MetricsHandler   http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger, cfg.ReplayRecorder)
			r.Use(idempotency.Wrap)
		}

		r.Route("/balances", func(r chi.Router) {
			r.Post("/", cfg.BalanceHandler.Create)
			r.Get("/", cfg.BalanceHandler.List)
			r.Get("/{id}", cfg.BalanceHandler.Get)
			r.Put("/{id}", cfg.BalanceHandler.Update)
			r.Delete("/{id}", cfg.BalanceHandler.Delete)
			r.Post("/{id}/reset", cfg.BalanceHandler.Reset)
			r.Get("/{id}/statistics", cfg.BalanceHandler.Statistics)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileBalance)
		})

		r.Route("/currencies", func(r chi.Router) {
			r.Post("/", cfg.CurrencyHandler.Create)
			r.Get("/", cfg.CurrencyHandler.List)
			r.Get("/{id}", cfg.CurrencyHandler.Get)
			r.Put("/{id}", cfg.CurrencyHandler.Update)
			r.Delete("/{id}", cfg.CurrencyHandler.Delete)
		})

		r.Route("/currency-balances", func(r chi.Router) {
			r.Post("/", cfg.CurrencyBalanceHandler.Create)
			r.Get("/", cfg.CurrencyBalanceHandler.List)
			r.Get("/by-pair", cfg.CurrencyBalanceHandler.GetByPair)
			r.Post("/get-or-create", cfg.CurrencyBalanceHandler.GetOrCreate)
			r.Post("/set-amount", cfg.CurrencyBalanceHandler.SetAmount)
			r.Post("/increment", cfg.CurrencyBalanceHandler.Increment)
			r.Post("/decrement", cfg.CurrencyBalanceHandler.Decrement)
			r.Get("/{id}", cfg.CurrencyBalanceHandler.Get)
			r.Delete("/{id}", cfg.CurrencyBalanceHandler.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/range", cfg.TransactionHandler.ListByDateRange)
			r.Post("/income", cfg.TransactionHandler.CreateIncome)
			r.Post("/expense", cfg.TransactionHandler.CreateExpense)
			r.Post("/transfer", cfg.TransactionHandler.CreateTransfer)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
		})

		r.Get("/ledger/reconciliation", cfg.LedgerHandler.Report)
	})

	return r
}
