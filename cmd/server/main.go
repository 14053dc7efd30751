// Package main provides the childcare rules search server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carequery/wac-search-go/internal/config"
	"github.com/carequery/wac-search-go/internal/embedding"
	"github.com/carequery/wac-search-go/internal/logger"
	"github.com/carequery/wac-search-go/internal/metrics"
	"github.com/carequery/wac-search-go/internal/search"
	"github.com/carequery/wac-search-go/internal/sentry"
	"github.com/carequery/wac-search-go/internal/storage"
)

// HTTP server timeouts. Search requests are bounded by the embedding
// provider timeout, so the write timeout leaves headroom above it.
const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 45 * time.Second
	httpIdleTimeout  = 120 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting childcare rules search server")

	// Initialize Sentry (optional)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.Info("Sentry error tracking enabled")
		defer sentry.Flush(2 * time.Second)
	}

	// Connect to corpus database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Load the corpus into memory. This validates embedding_meta against
	// the configured dimension so a mismatched embedding set fails here
	// rather than silently degrading similarity scores.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), time.Minute)
	c, err := db.LoadCorpus(loadCtx, cfg.EmbeddingDimensions)
	loadCancel()
	if err != nil {
		log.WithError(err).Error("Failed to load corpus")
		os.Exit(1)
	}
	log.WithField("chunks", len(c.Chunks)).
		WithField("qa_pairs", len(c.QAPairs)).
		Info("Corpus loaded")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create embedding provider (optional - lexical-only without one)
	var embedder embedding.Embedder
	if cfg.HasEmbeddingProvider() {
		embedder, err = embedding.NewFromConfig(cfg, log)
		if err != nil {
			log.WithError(err).Error("Failed to create embedding provider")
			os.Exit(1)
		}
		log.WithField("provider", cfg.EmbeddingProvider).
			WithField("model", embedder.Model()).
			Info("Embedding provider created")
		embedder = embedding.NewInstrumented(embedder, cfg.EmbeddingProvider, m)
	} else {
		log.Warn("No embedding provider configured, semantic search disabled (lexical-only mode)")
	}

	// Build the search engine
	engine, err := search.New(c, embedder, cfg.Retrieval, log)
	if err != nil {
		log.WithError(err).Error("Failed to build search engine")
		os.Exit(1)
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentry.Middleware())
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	// Setup routes
	searchHandler := newSearchHandler(engine, m, log)
	setupRoutes(router, cfg, searchHandler, engine, db, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
