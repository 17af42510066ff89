// Package app wires together all dependencies and runs the catalog
// service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/t-simwa/swiftcart-catalog/internal/cache"
	"github.com/t-simwa/swiftcart-catalog/internal/config"
	"github.com/t-simwa/swiftcart-catalog/internal/event"
	handler "github.com/t-simwa/swiftcart-catalog/internal/handler/http"
	"github.com/t-simwa/swiftcart-catalog/internal/repository/postgres"
	"github.com/t-simwa/swiftcart-catalog/internal/search"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index/elasticsearch"
	"github.com/t-simwa/swiftcart-catalog/internal/service"
	"github.com/t-simwa/swiftcart-catalog/pkg/database"
	"github.com/t-simwa/swiftcart-catalog/pkg/health"
	pkgkafka "github.com/t-simwa/swiftcart-catalog/pkg/kafka"
	"github.com/t-simwa/swiftcart-catalog/pkg/tracing"
)

// App holds the long-lived resources of the catalog service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	consumers   []*pkgkafka.Consumer
	httpServer  *http.Server

	shutdownTracing func(context.Context) error
}

// NewApp creates a new application instance, initializing all
// dependencies. The document store is required; Redis and Elasticsearch
// are optional and the service degrades to uncached, database-only
// operation when they are unreachable.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  "catalog-service",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TraceSampleRate,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// The document store is the source of truth; without it there is
	// nothing to serve.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, postgres.Migrations, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	repo := postgres.NewProductRepository(pool)

	// Redis is best-effort: a miss on startup means caching disabled.
	var (
		redisClient   *redis.Client
		responseCache *cache.Cache
	)
	redisClient, err = database.NewRedisClient(ctx, cfg.Redis(), logger)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.String("error", err.Error()))
		redisClient = nil
		responseCache = cache.Disabled(logger)
	} else {
		responseCache = cache.New(cache.NewRedisStore(redisClient), logger)
	}

	// Elasticsearch is best-effort: without it every search is served by
	// the document store.
	var (
		idx   index.Index
		esEng *elasticsearch.Engine
	)
	esEng, err = elasticsearch.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search served by database",
			slog.String("error", err.Error()),
		)
		esEng = nil
	} else {
		idx = esEng
		logger.Info("elasticsearch index initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	}

	router := search.NewRouter(repo, idx, logger)
	syncer := search.NewSyncer(repo, idx, logger)
	catalogService := service.NewCatalogService(repo, router, syncer, responseCache, logger)

	// Kafka consumers keep the index and cache in step with out-of-band
	// product changes.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaEnabled {
		eventConsumer := event.NewConsumer(catalogService, logger)
		topics := []string{
			event.TopicProductCreated,
			event.TopicProductUpdated,
			event.TopicProductDeleted,
		}
		for _, topic := range topics {
			consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6,
			}, eventConsumer.Handle, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	if cfg.KafkaEnabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	mux := handler.NewRouter(catalogService, healthHandler, handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		consumers:       consumers,
		httpServer:      httpServer,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	if err := a.shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
