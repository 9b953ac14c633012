package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/hookrelay/hookrelay/config"
	"github.com/hookrelay/hookrelay/internal/database"
	"github.com/hookrelay/hookrelay/internal/domain"
	httphandler "github.com/hookrelay/hookrelay/internal/http"
	"github.com/hookrelay/hookrelay/internal/repository"
	"github.com/hookrelay/hookrelay/internal/service"
	"github.com/hookrelay/hookrelay/pkg/cache"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// App wires configuration, storage, services, the delivery worker and the
// HTTP server together.
type App struct {
	config *config.Config
	logger logger.Logger

	db    *sql.DB
	cache cache.Cache

	subscriptionRepo domain.SubscriptionRepository
	payloadRepo      domain.PayloadRepository
	attemptRepo      domain.AttemptRepository

	subscriptionService *service.SubscriptionService
	ingestService       *service.IngestService
	deliveryService     *service.DeliveryService
	worker              *service.Worker

	mux    *http.ServeMux
	server *http.Server

	workerCancel context.CancelFunc
	workerDone   chan struct{}
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB sets a pre-configured database, skipping InitDB's connection
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithCache sets a pre-configured cache, skipping InitCache
func WithCache(c cache.Cache) AppOption {
	return func(a *App) {
		a.cache = c
	}
}

// WithLogger sets a custom logger
func WithLogger(log logger.Logger) AppOption {
	return func(a *App) {
		a.logger = log
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		config: cfg,
		logger: logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:    http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitDB connects to PostgreSQL and ensures the schema exists
func (a *App) InitDB() error {
	if a.db == nil {
		db, err := sql.Open("postgres", a.config.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		a.db = db
	}

	if err := database.InitializeDatabase(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.logger.Info("Database ready")
	return nil
}

// InitCache sets up the subscription cache. With REDIS_URL configured the
// cache is Redis-backed; otherwise the in-process cache is used.
func (a *App) InitCache() error {
	if a.cache != nil {
		return nil
	}

	if a.config.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(a.config.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to create redis cache: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}

		a.cache = redisCache
		a.logger.Info("Using Redis subscription cache")
		return nil
	}

	a.cache = cache.NewInMemoryCache(5 * time.Minute)
	a.logger.Info("Using in-memory subscription cache")
	return nil
}

// InitRepositories creates the PostgreSQL repositories
func (a *App) InitRepositories() error {
	a.subscriptionRepo = repository.NewSubscriptionRepository(a.db)
	a.payloadRepo = repository.NewPayloadRepository(a.db)
	a.attemptRepo = repository.NewAttemptRepository(a.db)
	return nil
}

// InitServices creates the services and the delivery worker
func (a *App) InitServices() error {
	a.subscriptionService = service.NewSubscriptionService(a.subscriptionRepo, a.cache, a.logger)
	a.ingestService = service.NewIngestService(a.subscriptionService, a.payloadRepo, a.logger)
	a.deliveryService = service.NewDeliveryService(nil, a.attemptRepo, a.config.Delivery, a.logger)
	a.worker = service.NewWorker(a.attemptRepo, a.deliveryService, a.config.Delivery, a.config.Worker, a.logger)
	return nil
}

// InitHandlers registers all HTTP routes on the mux
func (a *App) InitHandlers() error {
	httphandler.NewRootHandler(a.config.Version).RegisterRoutes(a.mux)
	httphandler.NewSubscriptionHandler(a.subscriptionService, a.logger).RegisterRoutes(a.mux)
	httphandler.NewWebhookHandler(a.ingestService, a.subscriptionService, a.payloadRepo, a.attemptRepo, a.logger).RegisterRoutes(a.mux)
	httphandler.NewStatsHandler(a.subscriptionService, a.attemptRepo, a.logger).RegisterRoutes(a.mux)
	return nil
}

// Initialize runs all initialization steps in order
func (a *App) Initialize() error {
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitCache(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	return a.InitHandlers()
}

// Start launches the delivery worker and serves HTTP until the server is
// shut down
func (a *App) Start() error {
	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})

	go func() {
		defer close(a.workerDone)
		a.worker.Run(workerCtx)
	}()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.mux,
	}

	a.logger.WithField("address", addr).Info("Server starting")
	return a.server.ListenAndServe()
}

// Shutdown stops the HTTP server, waits for the worker to finish its
// in-flight batch, then releases the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.WithField("error", err.Error()).Error("HTTP server shutdown failed")
		}
	}

	if a.workerCancel != nil {
		a.workerCancel()
		select {
		case <-a.workerDone:
		case <-ctx.Done():
			a.logger.Warn("Timed out waiting for delivery worker to stop")
		}
	}

	if a.cache != nil {
		if err := a.cache.Stop(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Cache shutdown failed")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// GetMux returns the HTTP mux, used by tests to drive requests without a
// listening server
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetConfig returns the application configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}
