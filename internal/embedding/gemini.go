package embedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/logger"
)

// GeminiDefaultModel is the default Gemini embedding model.
// gemini-embedding-001 supports MRL truncation via output dimensionality.
const GeminiDefaultModel = "gemini-embedding-001"

// Gemini generates embeddings using the Gemini embedding API with
// asymmetric retrieval task types.
type Gemini struct {
	client  *genai.Client
	model   string
	dims    int
	timeout time.Duration
	logger  *logger.Logger
}

// NewGemini creates a Gemini embedder.
func NewGemini(apiKey, model string, dims int, timeout time.Duration, log *logger.Logger) (*Gemini, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = GeminiDefaultModel
	}

	return &Gemini{
		client:  client,
		model:   model,
		dims:    dims,
		timeout: timeout,
		logger:  log.WithModule("embedding"),
	}, nil
}

// EmbedQuery embeds a live search query with the RETRIEVAL_QUERY task type.
func (g *Gemini) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, TaskQuery)
}

// EmbedDocument embeds a corpus document with the RETRIEVAL_DOCUMENT task type.
func (g *Gemini) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, TaskDocument)
}

func (g *Gemini) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text: %w", apperrors.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	dims := int32(g.dims)
	resp, err := g.client.Models.EmbedContent(ctx, g.model,
		genai.Text(text),
		&genai.EmbedContentConfig{
			TaskType:             taskType,
			OutputDimensionality: &dims,
		})
	if err != nil {
		return nil, apperrors.NewEmbeddingError("gemini", 0, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, apperrors.NewEmbeddingError("gemini", 0, fmt.Errorf("empty embedding returned"))
	}

	values := resp.Embeddings[0].Values
	if len(values) > g.dims {
		// The API may return the full dimensionality; truncate to match
		// the stored corpus vectors.
		values = values[:g.dims]
	}
	return values, nil
}

// Model returns the Gemini model identifier.
func (g *Gemini) Model() string {
	return g.model
}

// Dimensions returns the configured output dimension.
func (g *Gemini) Dimensions() int {
	return g.dims
}
