package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/logger"
)

// OpenAIDefaultModel is the default OpenAI embedding model.
// text-embedding-3 models support native dimension reduction.
const OpenAIDefaultModel = openai.EmbeddingModelTextEmbedding3Small

// OpenAI generates embeddings using the OpenAI embeddings API.
//
// The API has no query/document task types; both paths produce identical
// vectors. The TaskQuery/TaskDocument tags are still recorded in
// embedding_meta so a corpus embedded with OpenAI is never mixed with a
// Gemini-embedded one.
type OpenAI struct {
	client  openai.Client
	model   string
	dims    int
	timeout time.Duration
	logger  *logger.Logger
}

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(apiKey, model string, dims int, timeout time.Duration, log *logger.Logger) *OpenAI {
	if model == "" {
		model = OpenAIDefaultModel
	}

	return &OpenAI{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		dims:    dims,
		timeout: timeout,
		logger:  log.WithModule("embedding"),
	}
}

// EmbedQuery embeds a live search query.
func (o *OpenAI) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, text)
}

// EmbedDocument embeds a corpus document.
func (o *OpenAI) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, text)
}

func (o *OpenAI) embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text: %w", apperrors.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model:      o.model,
		Dimensions: openai.Int(int64(o.dims)),
	})
	if err != nil {
		return nil, apperrors.NewEmbeddingError("openai", 0, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperrors.NewEmbeddingError("openai", 0, fmt.Errorf("empty embedding returned"))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Model returns the OpenAI model identifier.
func (o *OpenAI) Model() string {
	return o.model
}

// Dimensions returns the configured output dimension.
func (o *OpenAI) Dimensions() int {
	return o.dims
}
