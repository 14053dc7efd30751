package search

import "sort"

// Source tags where a fused result came from.
type Source string

const (
	SourceCurated Source = "curated"
	SourceContent Source = "content"
)

// Candidate is one entry of a ranked retrieval list entering fusion.
type Candidate struct {
	// ID is the stable document identity the fused score accumulates
	// under: the chunk ID for content, the verbatim question for
	// curated answers.
	ID string

	// SectionID groups candidates for deduplication; at most one fused
	// result per section survives.
	SectionID string

	// Title is the human-readable section title, used by the confidence
	// classifier's scatter check.
	Title string

	Source   Source
	Text     string
	Category string

	// Similarity is the raw cosine similarity against the query. For
	// lexically retrieved chunks without an embedding it is 0.
	Similarity float64
}

// Fused is a candidate after rank fusion and boosting.
type Fused struct {
	Candidate
	FusedScore float64
}

// FusionConfig holds the RRF tunables.
type FusionConfig struct {
	RRFConstant   int
	CuratedWeight float64
	CuratedWindow int
	ContentWindow int
	TieEpsilon    float64
}

// FuseRRF merges up to three ranked lists — curated Q&A, dense content and
// lexical content — with weighted Reciprocal Rank Fusion. Each list must
// already be sorted by descending retrieval score. Only the top
// CuratedWindow curated and top ContentWindow entries per content list are
// admitted.
//
// Content lists always carry weight 1.0. Curated candidates carry
// CuratedWeight only when the best curated similarity is at least the best
// content similarity; otherwise curated answers would crowd out a
// genuinely stronger content match.
//
// Intent boosts are applied to the accumulated fused scores before the
// final sort. The result is sorted by descending fused score, with deltas
// under TieEpsilon broken by raw similarity, deduplicated to one entry per
// section, and cut to topK.
func FuseRRF(curated, dense, lexical []Candidate, intent Intent, cfg FusionConfig, boosts BoostConfig, topK int) []Fused {
	curated = window(curated, cfg.CuratedWindow)
	dense = window(dense, cfg.ContentWindow)
	lexical = window(lexical, cfg.ContentWindow)

	curatedWeight := 1.0
	if bestSimilarity(curated) >= bestSimilarity(dense) && len(curated) > 0 {
		curatedWeight = cfg.CuratedWeight
	}

	acc := make(map[string]*Fused)
	accumulate(acc, curated, curatedWeight, cfg.RRFConstant)
	accumulate(acc, dense, 1.0, cfg.RRFConstant)
	accumulate(acc, lexical, 1.0, cfg.RRFConstant)

	fused := make([]Fused, 0, len(acc))
	for _, f := range acc {
		f.FusedScore *= intent.BoostFactor(f.Text, f.Category, boosts)
		fused = append(fused, *f)
	}

	sort.Slice(fused, func(i, j int) bool {
		di := fused[i].FusedScore - fused[j].FusedScore
		if di > cfg.TieEpsilon {
			return true
		}
		if di < -cfg.TieEpsilon {
			return false
		}
		if fused[i].Similarity != fused[j].Similarity {
			return fused[i].Similarity > fused[j].Similarity
		}
		// Stable last resort so repeated queries order identically.
		return fused[i].ID < fused[j].ID
	})

	return dedupeBySection(fused, topK)
}

func window(list []Candidate, n int) []Candidate {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

func bestSimilarity(list []Candidate) float64 {
	best := 0.0
	for _, c := range list {
		if c.Similarity > best {
			best = c.Similarity
		}
	}
	return best
}

func accumulate(acc map[string]*Fused, list []Candidate, weight float64, k int) {
	for rank, cand := range list {
		contribution := weight / float64(k+rank+1)

		key := string(cand.Source) + "/" + cand.ID
		if existing, ok := acc[key]; ok {
			existing.FusedScore += contribution
			if cand.Similarity > existing.Similarity {
				existing.Similarity = cand.Similarity
			}
			continue
		}

		f := Fused{Candidate: cand, FusedScore: contribution}
		acc[key] = &f
	}
}

// dedupeBySection keeps the first occurrence per section and stops once
// topK unique sections are collected.
func dedupeBySection(fused []Fused, topK int) []Fused {
	seen := make(map[string]struct{}, topK)
	out := make([]Fused, 0, topK)

	for _, f := range fused {
		if _, dup := seen[f.SectionID]; dup {
			continue
		}
		seen[f.SectionID] = struct{}{}
		out = append(out, f)
		if topK > 0 && len(out) >= topK {
			break
		}
	}
	return out
}
