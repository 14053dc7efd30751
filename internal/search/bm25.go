package search

import (
	"math"
	"regexp"
	"strings"

	apperrors "github.com/carequery/wac-search-go/internal/errors"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalization. The defaults are the standard Robertson
// values and work well for the short regulatory chunks in this corpus.
const (
	DefaultBM25K1 = 1.5
	DefaultBM25B  = 0.75

	// minTokenLen drops noise tokens. Short function words carry no
	// lexical signal for this corpus.
	minTokenLen = 3
)

var nonWordPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases the text, replaces non-word characters with spaces,
// splits on whitespace and drops tokens shorter than minTokenLen.
func Tokenize(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// BM25Index is an inverted lexical index over a fixed document set.
// Build it once with NewBM25Index; Scores is safe for concurrent use
// afterwards since the index is never mutated.
type BM25Index struct {
	k1 float64
	b  float64

	docCount  int
	docLens   []int
	avgDocLen float64

	// termFreqs[i] maps term -> occurrences in document i.
	termFreqs []map[string]int

	// docFreq maps term -> number of documents containing it.
	docFreq map[string]int
}

// NewBM25Index tokenizes and indexes the documents. Document order is
// preserved: Scores returns one score per document at the same position.
func NewBM25Index(docs []string, k1, b float64) *BM25Index {
	if k1 <= 0 {
		k1 = DefaultBM25K1
	}
	if b < 0 || b > 1 {
		b = DefaultBM25B
	}

	idx := &BM25Index{
		k1:        k1,
		b:         b,
		docCount:  len(docs),
		docLens:   make([]int, len(docs)),
		termFreqs: make([]map[string]int, len(docs)),
		docFreq:   make(map[string]int),
	}

	var totalLen int
	for i, doc := range docs {
		tokens := Tokenize(doc)
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.termFreqs[i] = tf

		for term := range tf {
			idx.docFreq[term]++
		}
	}

	if idx.docCount > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.docCount)
	}

	return idx
}

// Len returns the number of indexed documents.
func (idx *BM25Index) Len() int {
	return idx.docCount
}

// Scores computes the BM25 score of every indexed document against the
// query. The result is a dense slice aligned with the indexed document
// order; documents sharing no query term score 0.
func (idx *BM25Index) Scores(query string) ([]float64, error) {
	if idx.docCount == 0 {
		return nil, apperrors.ErrNotInitialized
	}

	scores := make([]float64, idx.docCount)
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return scores, nil
	}

	for _, term := range queryTokens {
		df, ok := idx.docFreq[term]
		if !ok {
			continue
		}

		n := float64(idx.docCount)
		idf := math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)

		for i := range scores {
			tf := float64(idx.termFreqs[i][term])
			if tf == 0 {
				continue
			}

			lenNorm := 1 - idx.b + idx.b*float64(idx.docLens[i])/idx.avgDocLen
			scores[i] += idf * tf * (idx.k1 + 1) / (tf + idx.k1*lenNorm)
		}
	}

	return scores, nil
}
