package search

// Confidence is the discrete relevance verdict attached to a response.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ConfidenceConfig holds the classification thresholds. The bands were
// tuned against a held-out query set; they are configuration, not protocol.
type ConfidenceConfig struct {
	High          float64
	Medium        float64
	Low           float64
	ScatterSpread float64
}

// Classify derives a confidence label and a "topic covered" flag from the
// fused, deduplicated, score-sorted result list.
//
// A strong top raw similarity alone is sufficient for HIGH or MEDIUM. In
// the low band, a near-flat top-3 spanning three distinct section titles
// means the ranking is scattering across unrelated topics — that reads as
// "we have nothing on this", not as a weak-but-real hit, so it classifies
// NONE with covered=false. Callers must then suppress the individual
// results and present a not-covered fallback; NONE is a first-class
// verdict, never an error.
func Classify(results []Fused, titleOf func(Fused) string, cfg ConfidenceConfig) (Confidence, bool) {
	if len(results) == 0 {
		return ConfidenceNone, false
	}

	top := results[0].Similarity

	switch {
	case top >= cfg.High:
		return ConfidenceHigh, true
	case top >= cfg.Medium:
		return ConfidenceMedium, true
	case top >= cfg.Low:
		if isScattered(results, titleOf, cfg.ScatterSpread) {
			return ConfidenceNone, false
		}
		return ConfidenceLow, true
	default:
		return ConfidenceNone, false
	}
}

// isScattered reports whether the top 3 results are nearly flat in score
// and span 3 or more distinct section titles.
func isScattered(results []Fused, titleOf func(Fused) string, spread float64) bool {
	if len(results) < 3 {
		return false
	}

	titles := make(map[string]struct{}, 3)
	for _, r := range results[:3] {
		titles[titleOf(r)] = struct{}{}
	}
	if len(titles) < 3 {
		return false
	}

	return results[0].Similarity-results[2].Similarity < spread
}
