package embedding

import (
	"context"
	"time"

	"github.com/carequery/wac-search-go/internal/metrics"
)

// Instrumented decorates an Embedder with Prometheus request counters and
// duration histograms.
type Instrumented struct {
	inner    Embedder
	provider string
	metrics  *metrics.Metrics
}

// NewInstrumented wraps an embedder with metrics recording. A nil metrics
// instance returns the embedder unwrapped.
func NewInstrumented(inner Embedder, provider string, m *metrics.Metrics) Embedder {
	if m == nil {
		return inner
	}
	return &Instrumented{inner: inner, provider: provider, metrics: m}
}

// EmbedQuery embeds a live search query.
func (i *Instrumented) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return i.observe(ctx, text, i.inner.EmbedQuery)
}

// EmbedDocument embeds a corpus document.
func (i *Instrumented) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return i.observe(ctx, text, i.inner.EmbedDocument)
}

func (i *Instrumented) observe(ctx context.Context, text string, fn func(context.Context, string) ([]float32, error)) ([]float32, error) {
	start := time.Now()
	vec, err := fn(ctx, text)
	i.metrics.EmbeddingDurationSeconds.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	i.metrics.EmbeddingRequestsTotal.WithLabelValues(i.provider, status).Inc()

	return vec, err
}

// Model returns the wrapped embedder's model identifier.
func (i *Instrumented) Model() string {
	return i.inner.Model()
}

// Dimensions returns the wrapped embedder's output dimension.
func (i *Instrumented) Dimensions() int {
	return i.inner.Dimensions()
}
