package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDurationSeconds prometheus.Histogram
	SearchResultsReturned prometheus.Histogram

	// Query normalization metrics
	TypoCorrectionsTotal   prometheus.Counter
	SynonymExpansionsTotal prometheus.Counter

	// Embedding provider metrics
	EmbeddingRequestsTotal   *prometheus.CounterVec
	EmbeddingDurationSeconds *prometheus.HistogramVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wacsearch_requests_total",
				Help: "Total number of search requests by confidence tier and coverage",
			},
			[]string{"confidence", "covered"},
		),

		SearchDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wacsearch_duration_seconds",
				Help:    "End-to-end search duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}, // embedding call dominates
			},
		),

		SearchResultsReturned: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wacsearch_results_returned",
				Help:    "Number of results returned per covered query",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),

		TypoCorrectionsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "wacsearch_typo_corrections_total",
				Help: "Total number of queries with at least one typo correction",
			},
		),

		SynonymExpansionsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "wacsearch_synonym_expansions_total",
				Help: "Total number of queries expanded with synonym terms",
			},
		),

		EmbeddingRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wacsearch_embedding_requests_total",
				Help: "Total number of embedding provider calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		EmbeddingDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wacsearch_embedding_duration_seconds",
				Help:    "Embedding provider call duration in seconds by provider",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wacsearch_http_errors_total",
				Help: "Total number of HTTP error responses by path and status code",
			},
			[]string{"path", "code"},
		),
	}

	return m
}
