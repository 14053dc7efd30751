// Package main provides the childcare rules search server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carequery/wac-search-go/internal/config"
	"github.com/carequery/wac-search-go/internal/search"
	"github.com/carequery/wac-search-go/internal/storage"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, cfg *config.Config, h *searchHandler, engine *search.Engine, db *storage.DB, registry *prometheus.Registry) {
	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		stats := engine.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"corpus": gin.H{
				"chunks":           stats.Chunks,
				"qa_pairs":         stats.QAPairs,
				"chunk_vectors":    stats.ChunkVectors,
				"question_vectors": stats.QuestionVectors,
				"vocabulary":       stats.VocabularyWords,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Search API
	api := router.Group("/api")
	api.POST("/search", h.handleSearch)

	// Prometheus metrics endpoint, behind Basic Auth when a password is set
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
