// Package main provides the childcare rules search server entry point.
package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/logger"
	"github.com/carequery/wac-search-go/internal/metrics"
	"github.com/carequery/wac-search-go/internal/search"
	"github.com/carequery/wac-search-go/internal/sentry"
)

// notCoveredMessage is the user-facing fallback when the classifier
// decides the topic is not covered by the corpus. This is a first-class
// verdict, never an error response.
const notCoveredMessage = "The licensing rules we index don't appear to cover this topic. Try rephrasing, or check the full WAC 110-300 text."

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Query          string          `json:"query"`
	CorrectedQuery string          `json:"corrected_query,omitempty"`
	Confidence     string          `json:"confidence"`
	Covered        bool            `json:"covered"`
	Message        string          `json:"message,omitempty"`
	Results        []search.Result `json:"results"`
}

type searchHandler struct {
	engine  *search.Engine
	metrics *metrics.Metrics
	log     *logger.Logger
}

func newSearchHandler(engine *search.Engine, m *metrics.Metrics, log *logger.Logger) *searchHandler {
	return &searchHandler{
		engine:  engine,
		metrics: m,
		log:     log.WithModule("api"),
	}
}

// handleSearch answers POST /api/search.
func (h *searchHandler) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.HTTPErrorsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(http.StatusBadRequest)).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	start := time.Now()
	resp, err := h.engine.Search(c.Request.Context(), req.Query, req.Limit)
	h.metrics.SearchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		h.writeSearchError(c, err)
		return
	}

	h.metrics.SearchRequestsTotal.WithLabelValues(string(resp.Confidence), strconv.FormatBool(resp.Covered)).Inc()
	if resp.CorrectedQuery != "" {
		h.metrics.TypoCorrectionsTotal.Inc()
	}
	if resp.Expanded {
		h.metrics.SynonymExpansionsTotal.Inc()
	}

	out := searchResponse{
		Query:          req.Query,
		CorrectedQuery: resp.CorrectedQuery,
		Confidence:     string(resp.Confidence),
		Covered:        resp.Covered,
		Results:        resp.Results,
	}

	// Not-covered verdicts suppress the individual results; a scattered
	// low-score ranking is worse than no answer.
	if !resp.Covered {
		out.Results = []search.Result{}
		out.Message = notCoveredMessage
	} else {
		h.metrics.SearchResultsReturned.Observe(float64(len(resp.Results)))
	}

	c.JSON(http.StatusOK, out)
}

func (h *searchHandler) writeSearchError(c *gin.Context, err error) {
	var status int
	var msg string

	var embErr *apperrors.EmbeddingError

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = "query must not be empty"
	case errors.Is(err, apperrors.ErrEmbeddingUnavailable):
		status = http.StatusServiceUnavailable
		msg = "embedding provider unavailable"
	case errors.As(err, &embErr):
		status = http.StatusBadGateway
		msg = "embedding provider error"
	case errors.Is(err, apperrors.ErrNotInitialized):
		status = http.StatusServiceUnavailable
		msg = "search engine not ready"
	default:
		status = http.StatusInternalServerError
		msg = "search failed"
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
	}

	if status >= 500 {
		h.log.WithError(err).Error("Search request failed")
	}
	h.metrics.HTTPErrorsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(status)).Inc()
	c.JSON(status, gin.H{"error": msg})
}
