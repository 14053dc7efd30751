// Package search implements hybrid retrieval over the regulation corpus:
// BM25 lexical scoring and dense cosine similarity fused with weighted
// Reciprocal Rank Fusion, plus query normalization, intent boosting and
// confidence classification.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carequery/wac-search-go/internal/config"
	"github.com/carequery/wac-search-go/internal/corpus"
	"github.com/carequery/wac-search-go/internal/embedding"
	apperrors "github.com/carequery/wac-search-go/internal/errors"
	"github.com/carequery/wac-search-go/internal/logger"
)

// Result is one entry of a search response.
type Result struct {
	Source       Source  `json:"source"`
	ChunkID      string  `json:"chunk_id,omitempty"`
	Question     string  `json:"question,omitempty"`
	Answer       string  `json:"answer,omitempty"`
	SectionID    string  `json:"section_id"`
	SectionTitle string  `json:"section_title"`
	Subsection   string  `json:"subsection,omitempty"`
	Text         string  `json:"text"`
	SourceURL    string  `json:"source_url"`
	Category     string  `json:"category,omitempty"`
	Similarity   float64 `json:"similarity"`
	FusedScore   float64 `json:"fused_score"`
}

// Response is the outcome of one query. When Covered is false the caller
// must suppress Results and present a not-covered fallback; the entries
// are kept for logging and diagnostics only.
type Response struct {
	Results        []Result   `json:"results"`
	Confidence     Confidence `json:"confidence"`
	Covered        bool       `json:"covered"`
	CorrectedQuery string     `json:"corrected_query,omitempty"`

	// Expanded reports whether synonym terms were appended to the
	// internal search text. Diagnostic only; the expansion itself is
	// never exposed.
	Expanded bool `json:"-"`
}

// Stats reports the sizes of the loaded retrieval structures.
type Stats struct {
	Chunks          int
	QAPairs         int
	ChunkVectors    int
	QuestionVectors int
	VocabularyWords int
}

// Engine answers queries against an immutable corpus. All indices are
// built once in New and never mutated, so a single Engine is safe for
// concurrent use without locking. The embedding call is the only
// suspension point per query; everything else is synchronous CPU work.
type Engine struct {
	corpus     *corpus.Corpus
	embedder   embedding.Embedder
	cfg        config.RetrievalConfig
	bm25       *BM25Index
	vocab      *Vocabulary
	synonyms   SynonymTable
	categories CategoryKeywords

	qaByQuestion map[string]*corpus.QAPair

	log *logger.Logger
}

// New builds the retrieval indices over the corpus. The embedder may be
// nil, in which case only lexical retrieval contributes (degraded mode,
// intended for offline tooling and tests).
func New(c *corpus.Corpus, embedder embedding.Embedder, cfg config.RetrievalConfig, log *logger.Logger) (*Engine, error) {
	if c == nil || len(c.Chunks) == 0 {
		return nil, fmt.Errorf("empty corpus: %w", apperrors.ErrNotInitialized)
	}

	docs := make([]string, len(c.Chunks))
	vocabTexts := make([]string, 0, len(c.Chunks)+len(c.QAPairs))
	for i := range c.Chunks {
		docs[i] = c.Chunks[i].Text
		vocabTexts = append(vocabTexts, c.Chunks[i].Text)
	}

	qaByQuestion := make(map[string]*corpus.QAPair, len(c.QAPairs))
	for i := range c.QAPairs {
		qaByQuestion[c.QAPairs[i].Question] = &c.QAPairs[i]
		vocabTexts = append(vocabTexts, c.QAPairs[i].Question)
	}

	e := &Engine{
		corpus:       c,
		embedder:     embedder,
		cfg:          cfg,
		bm25:         NewBM25Index(docs, cfg.BM25K1, cfg.BM25B),
		vocab:        NewVocabulary(vocabTexts),
		synonyms:     DefaultSynonyms(),
		categories:   DefaultCategories(),
		qaByQuestion: qaByQuestion,
		log:          log.WithModule("search"),
	}

	e.log.Info("search engine ready",
		"chunks", len(c.Chunks),
		"qa_pairs", len(c.QAPairs),
		"vocabulary", e.vocab.Size(),
	)
	return e, nil
}

// Stats returns the sizes of the loaded retrieval structures.
func (e *Engine) Stats() Stats {
	return Stats{
		Chunks:          len(e.corpus.Chunks),
		QAPairs:         len(e.corpus.QAPairs),
		ChunkVectors:    len(e.corpus.ChunkEmbeddings),
		QuestionVectors: len(e.corpus.QuestionEmbeddings),
		VocabularyWords: e.vocab.Size(),
	}
}

// Search runs the full pipeline for one query: typo correction, synonym
// expansion, parallel embedding + BM25 scoring, rank fusion with intent
// boosting, and confidence classification. limit <= 0 selects the
// configured default; limits above the configured maximum are clamped.
func (e *Engine) Search(ctx context.Context, query string, limit int) (*Response, error) {
	if e == nil || e.bm25 == nil {
		return nil, apperrors.ErrNotInitialized
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", apperrors.ErrInvalidInput)
	}

	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	start := time.Now()

	// Intent comes from the raw query so expansion terms never
	// fabricate it.
	intent := DetectIntent(query, e.categories)

	searchText := query
	corrected, hadCorrections := e.vocab.Correct(query)
	if hadCorrections {
		searchText = corrected
	}
	expanded := ExpandQuery(searchText, e.synonyms)

	var (
		queryVec  []float32
		lexScores []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if e.embedder == nil {
			return nil
		}
		vec, err := e.embedder.EmbedQuery(gctx, expanded)
		if err != nil {
			return err
		}
		queryVec = vec
		return nil
	})
	g.Go(func() error {
		scores, err := e.bm25.Scores(expanded)
		if err != nil {
			return err
		}
		lexScores = scores
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chunkSims := e.chunkSimilarities(queryVec)

	dense := e.denseCandidates(chunkSims)
	lexical := e.lexicalCandidates(lexScores, chunkSims)
	curated := e.curatedCandidates(queryVec)

	fused := FuseRRF(curated, dense, lexical, intent, FusionConfig{
		RRFConstant:   e.cfg.RRFConstant,
		CuratedWeight: e.cfg.CuratedWeight,
		CuratedWindow: e.cfg.CuratedWindow,
		ContentWindow: e.cfg.ContentWindow,
		TieEpsilon:    e.cfg.TieEpsilon,
	}, BoostConfig{
		TimeBoost:     e.cfg.TimeBoost,
		NumericBoost:  e.cfg.NumericBoost,
		CategoryBoost: e.cfg.CategoryBoost,
	}, limit)

	confidence, covered := Classify(fused, func(f Fused) string { return f.Title }, ConfidenceConfig{
		High:          e.cfg.ConfidenceHigh,
		Medium:        e.cfg.ConfidenceMedium,
		Low:           e.cfg.ConfidenceLow,
		ScatterSpread: e.cfg.ScatterSpread,
	})

	resp := &Response{
		Results:    e.buildResults(fused),
		Confidence: confidence,
		Covered:    covered,
		Expanded:   expanded != searchText,
	}
	if hadCorrections {
		resp.CorrectedQuery = corrected
	}

	e.log.Debug("query answered",
		"confidence", string(confidence),
		"covered", covered,
		"results", len(resp.Results),
		"corrected", hadCorrections,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// chunkSimilarities returns the cosine similarity of every chunk against
// the query vector, aligned with corpus.Chunks. A nil query vector or a
// chunk without an embedding scores 0.
func (e *Engine) chunkSimilarities(queryVec []float32) []float64 {
	sims := make([]float64, len(e.corpus.Chunks))
	if queryVec == nil {
		return sims
	}
	for i := range e.corpus.Chunks {
		if vec, ok := e.corpus.ChunkEmbeddings[e.corpus.Chunks[i].ID]; ok {
			sims[i] = CosineSimilarity(queryVec, vec)
		}
	}
	return sims
}

func (e *Engine) denseCandidates(chunkSims []float64) []Candidate {
	out := make([]Candidate, 0, len(chunkSims))
	for i, sim := range chunkSims {
		if sim <= 0 {
			continue
		}
		out = append(out, e.chunkCandidate(i, sim))
	}
	sortCandidates(out, func(c Candidate) float64 { return c.Similarity })
	return out
}

func (e *Engine) lexicalCandidates(lexScores, chunkSims []float64) []Candidate {
	type scored struct {
		cand  Candidate
		score float64
	}
	hits := make([]scored, 0, len(lexScores))
	for i, score := range lexScores {
		if score <= 0 {
			continue
		}
		hits = append(hits, scored{cand: e.chunkCandidate(i, chunkSims[i]), score: score})
	}

	// Order within the lexical list follows BM25; the candidate keeps
	// its cosine similarity for tie-breaks and classification.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].cand.ID < hits[j].cand.ID
	})

	out := make([]Candidate, len(hits))
	for i, h := range hits {
		out[i] = h.cand
	}
	return out
}

func (e *Engine) curatedCandidates(queryVec []float32) []Candidate {
	if queryVec == nil {
		return nil
	}

	out := make([]Candidate, 0, len(e.corpus.QAPairs))
	for i := range e.corpus.QAPairs {
		qa := &e.corpus.QAPairs[i]
		vec, ok := e.corpus.QuestionEmbeddings[qa.Question]
		if !ok {
			continue
		}
		sim := CosineSimilarity(queryVec, vec)
		if sim <= 0 {
			continue
		}
		out = append(out, Candidate{
			ID:         qa.Question,
			SectionID:  qa.SectionID,
			Title:      qa.SectionTitle,
			Source:     SourceCurated,
			Text:       qa.Answer,
			Similarity: sim,
		})
	}
	sortCandidates(out, func(c Candidate) float64 { return c.Similarity })
	return out
}

func (e *Engine) chunkCandidate(i int, sim float64) Candidate {
	chunk := &e.corpus.Chunks[i]
	return Candidate{
		ID:         chunk.ID,
		SectionID:  chunk.SectionID,
		Title:      chunk.SectionTitle,
		Source:     SourceContent,
		Text:       chunk.Text,
		Category:   chunk.Category,
		Similarity: sim,
	}
}

func (e *Engine) buildResults(fused []Fused) []Result {
	results := make([]Result, 0, len(fused))
	for _, f := range fused {
		r := Result{
			Source:       f.Source,
			SectionID:    f.SectionID,
			SectionTitle: f.Title,
			Similarity:   f.Similarity,
			FusedScore:   f.FusedScore,
		}

		switch f.Source {
		case SourceCurated:
			if qa, ok := e.qaByQuestion[f.ID]; ok {
				r.Question = qa.Question
				r.Answer = qa.Answer
				r.Text = qa.Answer
				r.SourceURL = qa.SourceURL
			}
		default:
			if chunk := e.corpus.ChunkByID(f.ID); chunk != nil {
				r.ChunkID = chunk.ID
				r.Subsection = chunk.Subsection
				r.Text = chunk.Text
				r.SourceURL = chunk.SourceURL
				r.Category = chunk.Category
			}
		}

		results = append(results, r)
	}
	return results
}

// sortCandidates orders by descending score with a stable ID tie-break so
// repeated queries produce identical rankings.
func sortCandidates(list []Candidate, score func(Candidate) float64) {
	sort.Slice(list, func(i, j int) bool {
		si, sj := score(list[i]), score(list[j])
		if si != sj {
			return si > sj
		}
		return list[i].ID < list[j].ID
	})
}
