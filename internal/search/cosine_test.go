package search

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	vec := []float32{0.3, -0.5, 0.8, 0.1}

	sim := CosineSimilarity(vec, vec)
	if math.Abs(sim-1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(v, v) = %v, want 1.0", sim)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if math.Abs(sim) > 1e-6 {
		t.Errorf("CosineSimilarity(orthogonal) = %v, want 0", sim)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	sim := CosineSimilarity([]float32{1, 1}, []float32{-1, -1})
	if math.Abs(sim+1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(opposite) = %v, want -1.0", sim)
	}
}

func TestCosineSimilarity_TruncatesToShorter(t *testing.T) {
	a := []float32{1, 0, 0.5, 0.9}
	b := []float32{1, 0}

	sim := CosineSimilarity(a, b)
	// Over the shared prefix [1,0] vs [1,0] similarity is 1
	if math.Abs(sim-1.0) > 1e-6 {
		t.Errorf("CosineSimilarity(truncated) = %v, want 1.0", sim)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	sim := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	if sim != 0 {
		t.Errorf("CosineSimilarity(zero, v) = %v, want 0 (no NaN)", sim)
	}
	if math.IsNaN(sim) {
		t.Error("CosineSimilarity must never return NaN")
	}
}

func TestCosineSimilarity_Empty(t *testing.T) {
	if sim := CosineSimilarity(nil, []float32{1}); sim != 0 {
		t.Errorf("CosineSimilarity(nil, v) = %v, want 0", sim)
	}
}
