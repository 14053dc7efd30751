// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the embedding provider, and the retrieval tunables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Embedding Provider Configuration
	EmbeddingProvider    string        // "gemini" or "openai" (default: "gemini")
	GeminiAPIKey         string        // Gemini API key for embedding generation
	OpenAIAPIKey         string        // OpenAI API key (alternative embedding provider)
	EmbeddingModel       string        // Model name override (empty = provider default)
	EmbeddingDimensions  int           // Output dimension for MRL truncation (default: 256)
	EmbeddingTimeout     time.Duration // Per-request timeout for embedding calls
	EmbeddingRateLimit   float64       // Requests per minute for ingest embedding calls
	IngestMaxRetries     int           // Max retry attempts for ingest embedding calls
	IngestEmbedBatchSize int           // Documents embedded per progress log line

	// Sentry Configuration
	SentryDSN   string // Sentry DSN for error reporting (empty = disabled)
	Environment string // Deployment environment tag for error reporting

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite corpus database

	// Retrieval Configuration (embedded)
	Retrieval RetrievalConfig
}

// RetrievalConfig holds the ranking pipeline tunables.
//
// These are heuristic constants validated empirically against a held-out
// query set, not protocol. They are exposed here so deployments can retune
// without a code change.
type RetrievalConfig struct {
	// Confidence bands over the top raw similarity score
	ConfidenceHigh   float64 // top score >= this → HIGH (default: 0.75)
	ConfidenceMedium float64 // top score >= this → MEDIUM (default: 0.65)
	ConfidenceLow    float64 // top score >= this → LOW unless scattered (default: 0.55)
	ScatterSpread    float64 // max top1-top3 spread counted as "flat" (default: 0.03)

	// Rank fusion
	RRFConstant   int     // smoothing constant k in weight/(k+rank+1) (default: 60)
	CuratedWeight float64 // curated Q&A fusion weight when Q&A leads (default: 1.2)
	CuratedWindow int     // curated candidates admitted into fusion (default: 10)
	ContentWindow int     // content candidates admitted into fusion (default: 20)
	TieEpsilon    float64 // fused-score delta treated as a tie (default: 0.0001)

	// Intent boosts (multiplicative, applied before the final sort)
	TimeBoost     float64 // time/duration intent + time-unit match (default: 1.2)
	NumericBoost  float64 // numeric intent + digit match (default: 1.1)
	CategoryBoost float64 // query category matches chunk category (default: 1.1)

	// BM25 parameters
	BM25K1 float64 // term frequency saturation (default: 1.5)
	BM25B  float64 // document length normalization (default: 0.75)

	// Result limits
	DefaultLimit int // results returned when the caller gives no limit (default: 5)
	MaxLimit     int // hard cap on requested result count (default: 20)
}

// DefaultRetrieval returns the retrieval tunables at their documented
// defaults.
func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		ConfidenceHigh:   0.75,
		ConfidenceMedium: 0.65,
		ConfidenceLow:    0.55,
		ScatterSpread:    0.03,
		RRFConstant:      60,
		CuratedWeight:    1.2,
		CuratedWindow:    10,
		ContentWindow:    20,
		TieEpsilon:       0.0001,
		TimeBoost:        1.2,
		NumericBoost:     1.1,
		CategoryBoost:    1.1,
		BM25K1:           1.5,
		BM25B:            0.75,
		DefaultLimit:     5,
		MaxLimit:         20,
	}
}

func loadRetrieval() RetrievalConfig {
	d := DefaultRetrieval()
	return RetrievalConfig{
		ConfidenceHigh:   getFloatEnv("CONFIDENCE_HIGH", d.ConfidenceHigh),
		ConfidenceMedium: getFloatEnv("CONFIDENCE_MEDIUM", d.ConfidenceMedium),
		ConfidenceLow:    getFloatEnv("CONFIDENCE_LOW", d.ConfidenceLow),
		ScatterSpread:    getFloatEnv("SCATTER_SPREAD", d.ScatterSpread),
		RRFConstant:      getIntEnv("RRF_CONSTANT", d.RRFConstant),
		CuratedWeight:    getFloatEnv("CURATED_WEIGHT", d.CuratedWeight),
		CuratedWindow:    getIntEnv("CURATED_WINDOW", d.CuratedWindow),
		ContentWindow:    getIntEnv("CONTENT_WINDOW", d.ContentWindow),
		TieEpsilon:       getFloatEnv("TIE_EPSILON", d.TieEpsilon),
		TimeBoost:        getFloatEnv("TIME_BOOST", d.TimeBoost),
		NumericBoost:     getFloatEnv("NUMERIC_BOOST", d.NumericBoost),
		CategoryBoost:    getFloatEnv("CATEGORY_BOOST", d.CategoryBoost),
		BM25K1:           getFloatEnv("BM25_K1", d.BM25K1),
		BM25B:            getFloatEnv("BM25_B", d.BM25B),
		DefaultLimit:     getIntEnv("SEARCH_DEFAULT_LIMIT", d.DefaultLimit),
		MaxLimit:         getIntEnv("SEARCH_MAX_LIMIT", d.MaxLimit),
	}
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Embedding Provider Configuration
		EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", ""),
		EmbeddingDimensions:  getIntEnv("EMBEDDING_DIMENSIONS", 256),
		EmbeddingTimeout:     getDurationEnv("EMBEDDING_TIMEOUT", 30*time.Second),
		EmbeddingRateLimit:   getFloatEnv("EMBEDDING_RATE_LIMIT_RPM", 1000),
		IngestMaxRetries:     getIntEnv("INGEST_MAX_RETRIES", 5),
		IngestEmbedBatchSize: getIntEnv("INGEST_EMBED_BATCH_SIZE", 50),

		// Sentry Configuration
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("ENVIRONMENT", "production"),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Server Configuration
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Data Configuration
		DataDir: getEnv("DATA_DIR", "./data"),

		// Retrieval Configuration
		Retrieval: loadRetrieval(),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.EmbeddingProvider != "gemini" && c.EmbeddingProvider != "openai" {
		errs = append(errs, fmt.Errorf("EMBEDDING_PROVIDER must be gemini or openai, got %q", c.EmbeddingProvider))
	}
	if c.EmbeddingDimensions <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions))
	}
	if c.EmbeddingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_TIMEOUT must be positive, got %v", c.EmbeddingTimeout))
	}
	if err := c.Retrieval.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retrieval config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the retrieval tunables for internal consistency
func (r *RetrievalConfig) Validate() error {
	var errs []error

	if !(r.ConfidenceHigh > r.ConfidenceMedium && r.ConfidenceMedium > r.ConfidenceLow) {
		errs = append(errs, fmt.Errorf("confidence bands must be strictly ordered high > medium > low, got %v/%v/%v",
			r.ConfidenceHigh, r.ConfidenceMedium, r.ConfidenceLow))
	}
	if r.RRFConstant <= 0 {
		errs = append(errs, fmt.Errorf("RRF_CONSTANT must be positive, got %d", r.RRFConstant))
	}
	if r.CuratedWindow <= 0 || r.ContentWindow <= 0 {
		errs = append(errs, fmt.Errorf("fusion windows must be positive, got %d/%d", r.CuratedWindow, r.ContentWindow))
	}
	if r.BM25K1 <= 0 || r.BM25B < 0 || r.BM25B > 1 {
		errs = append(errs, fmt.Errorf("BM25 parameters out of range: k1=%v b=%v", r.BM25K1, r.BM25B))
	}
	if r.DefaultLimit <= 0 || r.MaxLimit < r.DefaultLimit {
		errs = append(errs, fmt.Errorf("result limits out of range: default=%d max=%d", r.DefaultLimit, r.MaxLimit))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasEmbeddingProvider returns true if an API key matching the configured
// provider is present.
func (c *Config) HasEmbeddingProvider() bool {
	switch c.EmbeddingProvider {
	case "gemini":
		return c.GeminiAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	}
	return false
}

// SQLitePath returns the full path to the SQLite corpus database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "corpus.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
