package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
)

// fakeEmbedder fails a fixed number of times before succeeding.
type fakeEmbedder struct {
	failures int
	calls    int
	err      error
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.embed()
}

func (f *fakeEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return f.embed()
}

func (f *fakeEmbedder) embed() ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) Model() string   { return "fake" }
func (f *fakeEmbedder) Dimensions() int { return 2 }

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetrying_SucceedsAfterTransientFailures(t *testing.T) {
	fake := &fakeEmbedder{
		failures: 2,
		err:      apperrors.NewEmbeddingError("fake", 500, errors.New("server error")),
	}
	r := NewRetrying(fake, fastRetryConfig(), nil)

	vec, err := r.EmbedDocument(context.Background(), "some text")
	if err != nil {
		t.Fatalf("EmbedDocument() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("vector length = %d, want 2", len(vec))
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

func TestRetrying_GivesUpAfterMaxAttempts(t *testing.T) {
	fake := &fakeEmbedder{
		failures: 10,
		err:      apperrors.NewEmbeddingError("fake", 500, errors.New("server error")),
	}
	r := NewRetrying(fake, fastRetryConfig(), nil)

	if _, err := r.EmbedDocument(context.Background(), "some text"); err == nil {
		t.Fatal("EmbedDocument() should fail after exhausting retries")
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3 (MaxAttempts)", fake.calls)
	}
}

func TestRetrying_PermanentErrorNotRetried(t *testing.T) {
	fake := &fakeEmbedder{
		failures: 10,
		err:      apperrors.NewEmbeddingError("fake", 400, errors.New("bad request")),
	}
	r := NewRetrying(fake, fastRetryConfig(), nil)

	if _, err := r.EmbedDocument(context.Background(), "some text"); err == nil {
		t.Fatal("EmbedDocument() should fail on permanent error")
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on 400)", fake.calls)
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad request", apperrors.NewEmbeddingError("p", 400, errors.New("x")), true},
		{"rate limited", apperrors.NewEmbeddingError("p", 429, errors.New("x")), false},
		{"server error", apperrors.NewEmbeddingError("p", 503, errors.New("x")), false},
		{"network error", apperrors.NewEmbeddingError("p", 0, errors.New("dial tcp")), false},
		{"invalid input", apperrors.ErrInvalidInput, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	initial := 100 * time.Millisecond
	max := time.Second

	if d := CalculateBackoff(0, initial, max); d != 0 {
		t.Errorf("backoff for attempt 0 = %v, want 0", d)
	}

	for attempt := 1; attempt <= 6; attempt++ {
		d := CalculateBackoff(attempt, initial, max)
		if d < 0 || d > max {
			t.Errorf("backoff for attempt %d = %v, outside [0, %v]", attempt, d, max)
		}
	}
}
