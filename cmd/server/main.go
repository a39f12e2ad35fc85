package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/analytics"
	"github.com/haalarikone/haku-api/internal/api"
	"github.com/haalarikone/haku-api/internal/cache"
	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/dataset"
	"github.com/haalarikone/haku-api/internal/observability"
	"github.com/haalarikone/haku-api/internal/search"
	"github.com/haalarikone/haku-api/internal/semantic"
	"github.com/haalarikone/haku-api/internal/taxonomy"
	"github.com/haalarikone/haku-api/internal/understand"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting overall search service",
		zap.String("service", cfg.Observability.ServiceName),
	)

	// Initialize tracing
	tracerShutdown, err := observability.InitTracer(cfg.Observability.ServiceName)
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without tracing", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset is the source of truth; refuse to start without it.
	store := dataset.NewStore(cfg.Dataset.Dir, logger)
	if err := store.Preload(); err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Info("dataset loaded", zap.String("dir", cfg.Dataset.Dir))

	// Initialize clients
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.Search.InterpretationTTL, logger)
	if err != nil {
		return fmt.Errorf("initializing redis: %w", err)
	}
	defer redisCache.Close()
	logger.Info("redis cache initialized")

	var semClient *semantic.Client
	semClient, err = semantic.NewClient(cfg.Semantic, cfg.Search, logger)
	if err != nil {
		logger.Warn("semantic index initialization failed, fallback will be unavailable", zap.Error(err))
		semClient = nil
	} else {
		logger.Info("semantic index client initialized")
	}

	var chClient *analytics.Client
	chClient, err = analytics.NewClient(cfg.ClickHouse, logger)
	if err != nil {
		logger.Warn("clickhouse initialization failed, analytics will be unavailable", zap.Error(err))
	} else {
		defer chClient.Close()
		if err := chClient.EnsureTables(ctx); err != nil {
			logger.Warn("clickhouse table creation failed", zap.Error(err))
		}
		logger.Info("clickhouse client initialized")
	}

	// Initialize slow query detector
	var analyticsWriter observability.AnalyticsWriter
	if chClient != nil {
		analyticsWriter = chClient
	}
	slowQueryDetector := observability.NewSlowQueryDetector(
		cfg.Search.SlowQuery.WarningThreshold,
		cfg.Search.SlowQuery.CriticalThreshold,
		logger,
		analyticsWriter,
	)

	// Query understanding
	tax := taxonomy.New()
	extractor := understand.NewOpenAIExtractor(cfg.Extractor, cfg.Search.CircuitBreaker, logger)
	interpreter := understand.NewService(tax, redisCache, extractor, logger)

	// Search pipeline
	var semanticSearcher search.SemanticSearcher
	if semClient != nil {
		semanticSearcher = semClient
	}
	searchService := search.New(
		store, tax, interpreter, semanticSearcher,
		slowQueryDetector, cfg.Search, logger,
	)

	// Initialize HTTP server
	handler := api.NewHandler(searchService, logger)

	healthHandler := api.NewHealthHandler(logger)
	healthHandler.Register("redis", redisCache)
	if semClient != nil {
		healthHandler.Register("semantic_index", semClient)
	}
	if chClient != nil {
		healthHandler.Register("clickhouse", chClient)
	}

	limiter := api.NewRateLimiter(redisCache, cfg.Search.RateLimit, logger)
	router := api.NewRouter(handler, healthHandler, limiter, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	logger.Info("starting graceful shutdown", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	// Cancel background operations
	cancel()

	// Shutdown tracing
	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
	return nil
}
