package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/cashledger/internal/adapter/http"
	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/cashledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cashledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashledger/internal/adapter/repository/redis"
	"github.com/iho/cashledger/internal/infrastructure/config"
	"github.com/iho/cashledger/internal/infrastructure/eventpublisher"
	"github.com/iho/cashledger/internal/infrastructure/logger"
	"github.com/iho/cashledger/internal/infrastructure/metrics"
	"github.com/iho/cashledger/internal/infrastructure/postgres"
	"github.com/iho/cashledger/internal/infrastructure/redis"
	"github.com/iho/cashledger/internal/usecase"
)

const rateLimiterCleanupInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()

	go func() {
		if err := a.publisher.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if a.limiter != nil {
		go a.limiter.RunCleanup(bgCtx, rateLimiterCleanupInterval)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app is the wired server minus the listener.
type app struct {
	router    http.Handler
	publisher *eventpublisher.EventPublisher
	limiter   *middleware.RateLimiter
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is one backend's set of repositories.
type storage struct {
	txManager  usecase.TransactionManager
	balances   usecase.BalanceRepository
	currencies usecase.CurrencyRepository
	cbs        usecase.CurrencyBalanceRepository
	txs        usecase.TransactionRepository
	outbox     usecase.OutboxRepository
	retrier    usecase.Retrier
	db         handler.Pinger
	close      func()
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.New(reg)
	a := &app{}

	st, err := openStorage(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	health := handler.NewHealthHandler()
	if st.db != nil {
		health.WithCheck("postgres", st.db)
	}

	var (
		idempotency usecase.IdempotencyStore
		publisher   eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
		currencies                           = st.currencies
	)

	if cfg.RedisEnabled() {
		client, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		currencies = redisRepo.NewCachedCurrencyRepository(st.currencies, redisRepo.NewCache(client), cfg.CurrencyCacheTTL, log)
		idempotency = redisRepo.NewIdempotencyStore(client)
		publisher = eventpublisher.NewRedisPublisher(client, cfg.EventsChannel)
		health.WithCheck("redis", redisPinger(client))
	}

	idGen := postgresRepo.NewULIDGenerator()

	currencyUC := usecase.NewCurrencyUseCase(currencies, idGen)
	balanceUC := usecase.NewBalanceUseCase(st.txManager, st.balances, currencies, st.cbs, st.txs, st.outbox, idGen, st.retrier, m)
	cbUC := usecase.NewCurrencyBalanceUseCase(st.txManager, st.balances, currencies, st.cbs, idGen, st.retrier, m)
	txUC := usecase.NewTransactionUseCase(st.txManager, st.balances, currencies, st.cbs, st.txs, st.outbox, idGen, st.retrier, m)
	reconciliationUC := usecase.NewReconciliationUseCase(st.balances, st.cbs, st.txs)

	// The postgres store is seeded by its migrations.
	if cfg.StorageDriver == config.StorageDriverMemory && cfg.SeedCurrencies {
		n, err := currencyUC.Seed(ctx, usecase.DefaultCurrencies)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("seed currencies: %w", err)
		}
		log.Info().Int("count", n).Msg("seeded currencies")
	}

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outbox,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:         handler.NewBalanceHandler(balanceUC, txUC),
		CurrencyHandler:        handler.NewCurrencyHandler(currencyUC),
		CurrencyBalanceHandler: handler.NewCurrencyBalanceHandler(cbUC),
		TransactionHandler:     handler.NewTransactionHandler(txUC),
		LedgerHandler:          handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:          health,
		Logger:                 log,
		IdempotencyStore:       idempotency,
		IdempotencyTTL:         cfg.IdempotencyTTL,
		RateLimiter:            a.limiter,
		HTTPMetrics:            m,
		ReplayRecorder:         m,
		MetricsHandler:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return newMemoryStorage(), nil
	}

	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	txManager, err := postgresRepo.NewTxManager(pool, cfg.DatabaseIsolation)
	if err != nil {
		pool.Close()
		return nil, err
	}

	m.RegisterPoolStats(func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	})

	return &storage{
		txManager:  txManager,
		balances:   postgresRepo.NewBalanceRepository(pool),
		currencies: postgresRepo.NewCurrencyRepository(pool),
		cbs:        postgresRepo.NewCurrencyBalanceRepository(pool),
		txs:        postgresRepo.NewTransactionRepository(pool),
		outbox:     postgresRepo.NewOutboxRepository(pool),
		retrier:    postgresRepo.NewRetrier(log),
		db:         pool,
		close:      pool.Close,
	}, nil
}

func newMemoryStorage() *storage {
	store := memoryRepo.NewStore()
	return &storage{
		txManager:  memoryRepo.NewTxManager(store),
		balances:   memoryRepo.NewBalanceRepository(store),
		currencies: memoryRepo.NewCurrencyRepository(store),
		cbs:        memoryRepo.NewCurrencyBalanceRepository(store),
		txs:        memoryRepo.NewTransactionRepository(store),
		outbox:     memoryRepo.NewOutboxRepository(store),
		close:      func() {},
	}
}

func redisPinger(client *goredis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
