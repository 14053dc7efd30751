// Package embedding provides text embedding generation for semantic search.
// It supports Gemini and OpenAI providers behind a common interface.
//
// Query and document embeddings must come from the same model, prefix
// convention, and truncation dimension; the storage layer records these in
// embedding_meta and refuses to load a mismatched set.
package embedding

import (
	"context"
	"fmt"

	"github.com/carequery/wac-search-go/internal/config"
	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/logger"
)

// Task prefix conventions. Gemini uses task types natively; the OpenAI
// provider records the same tags in embedding_meta for compatibility
// checking even though the API takes no prefix.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Embedder generates fixed-length embedding vectors for text.
//
// EmbedQuery and EmbedDocument use the provider's asymmetric retrieval
// prefixes; mixing them up silently degrades similarity scores, so callers
// must pick the one matching the text's role.
type Embedder interface {
	// EmbedQuery embeds a live search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocument embeds a corpus document at ingest time.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)

	// Model returns the provider model identifier.
	Model() string

	// Dimensions returns the configured output dimension.
	Dimensions() int
}

// NewFromConfig creates the embedder selected by EMBEDDING_PROVIDER.
// Returns ErrEmbeddingUnavailable if the matching API key is missing.
func NewFromConfig(cfg *config.Config, log *logger.Logger) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set: %w", apperrors.ErrEmbeddingUnavailable)
		}
		return NewGemini(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.EmbeddingTimeout, log)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", apperrors.ErrEmbeddingUnavailable)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.EmbeddingTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.EmbeddingProvider, apperrors.ErrEmbeddingUnavailable)
	}
}
