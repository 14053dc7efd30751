package search

import "math"

// CosineSimilarity computes the cosine of the angle between two vectors.
//
// Vectors of unequal length are compared over the shorter prefix. This
// tolerates a truncation-dimension mismatch instead of failing, but the
// resulting score is degraded — the storage layer's embedding_meta check
// is the real defense; this is a last-resort guard.
//
// A zero-norm input returns 0 rather than NaN so downstream sorting and
// classification stay stable.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}
