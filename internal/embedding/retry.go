package embedding

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/ratelimit"
)

// RetryConfig defines retry behavior for ingest-time embedding calls.
// Query-path embedding is never retried; failures propagate to the caller.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the standard ingest retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// CalculateBackoff calculates the delay before the next retry attempt.
// Uses the Full Jitter algorithm:
//
//	delay = random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}

	exp := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(initial) * exp)
	if delay > max {
		delay = max
	}
	if delay <= 0 {
		return 0
	}

	// crypto/rand for uniform distribution without bias
	maxNs := big.NewInt(int64(delay))
	jitterBig, err := rand.Int(rand.Reader, maxNs)
	if err != nil {
		return delay / 2
	}
	return time.Duration(jitterBig.Int64())
}

// sleep waits for the specified duration, respecting context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsPermanent reports whether an embedding error should not be retried.
// Client errors other than 429 are permanent; network failures and server
// errors are transient.
func IsPermanent(err error) bool {
	if errors.Is(err, apperrors.ErrInvalidInput) {
		return true
	}
	var embErr *apperrors.EmbeddingError
	if errors.As(err, &embErr) {
		if embErr.StatusCode >= 400 && embErr.StatusCode < 500 && embErr.StatusCode != 429 {
			return true
		}
	}
	return false
}

// Retrying decorates an Embedder with rate limiting and Full Jitter retry.
// It is used by ingest only; the query path calls the provider directly so
// failures surface immediately.
type Retrying struct {
	inner   Embedder
	cfg     RetryConfig
	limiter *ratelimit.Limiter
}

// NewRetrying wraps an embedder with retry and rate limiting.
// limiter may be nil to disable throttling.
func NewRetrying(inner Embedder, cfg RetryConfig, limiter *ratelimit.Limiter) *Retrying {
	return &Retrying{inner: inner, cfg: cfg, limiter: limiter}
}

// EmbedQuery embeds a query with retry (used by ingest dry-run checks).
func (r *Retrying) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return r.withRetry(ctx, text, r.inner.EmbedQuery)
}

// EmbedDocument embeds a document with retry.
func (r *Retrying) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return r.withRetry(ctx, text, r.inner.EmbedDocument)
}

func (r *Retrying) withRetry(ctx context.Context, text string, fn func(context.Context, string) ([]float32, error)) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vec, err := fn(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if IsPermanent(err) {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		delay := CalculateBackoff(attempt+1, r.cfg.InitialDelay, r.cfg.MaxDelay)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// Model returns the wrapped embedder's model identifier.
func (r *Retrying) Model() string {
	return r.inner.Model()
}

// Dimensions returns the wrapped embedder's output dimension.
func (r *Retrying) Dimensions() int {
	return r.inner.Dimensions()
}
