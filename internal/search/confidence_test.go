package search

import (
	"fmt"
	"testing"
)

func testConfidenceConfig() ConfidenceConfig {
	return ConfidenceConfig{High: 0.75, Medium: 0.65, Low: 0.55, ScatterSpread: 0.03}
}

func fusedWithScores(sims ...float64) []Fused {
	out := make([]Fused, len(sims))
	for i, s := range sims {
		out[i] = Fused{Candidate: Candidate{
			ID:         fmt.Sprintf("chunk-%d", i),
			SectionID:  fmt.Sprintf("section-%d", i),
			Similarity: s,
		}}
	}
	return out
}

func sectionTitle(f Fused) string { return f.SectionID }

func TestClassify_Bands(t *testing.T) {
	cfg := testConfidenceConfig()

	tests := []struct {
		name        string
		sims        []float64
		want        Confidence
		wantCovered bool
	}{
		{"high", []float64{0.82, 0.60, 0.58}, ConfidenceHigh, true},
		{"high at boundary", []float64{0.75}, ConfidenceHigh, true},
		{"medium", []float64{0.70, 0.60, 0.58}, ConfidenceMedium, true},
		{"low not scattered", []float64{0.60, 0.50, 0.40}, ConfidenceLow, true},
		{"below all bands", []float64{0.40, 0.30, 0.20}, ConfidenceNone, false},
		{"empty", nil, ConfidenceNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, covered := Classify(fusedWithScores(tt.sims...), sectionTitle, cfg)
			if got != tt.want || covered != tt.wantCovered {
				t.Errorf("Classify(%v) = (%s, %v), want (%s, %v)",
					tt.sims, got, covered, tt.want, tt.wantCovered)
			}
		})
	}
}

func TestClassify_ScatteredLowScores(t *testing.T) {
	// Flat low scores across three distinct sections: the engine found
	// nothing specific.
	results := fusedWithScores(0.58, 0.56, 0.55)

	got, covered := Classify(results, sectionTitle, testConfidenceConfig())
	if got != ConfidenceNone || covered {
		t.Errorf("Classify(scattered) = (%s, %v), want (none, false)", got, covered)
	}
}

func TestClassify_LowButFocused(t *testing.T) {
	// Same spread but only two distinct titles: not scattered.
	results := fusedWithScores(0.58, 0.56, 0.55)
	results[1].SectionID = results[0].SectionID

	got, covered := Classify(results, sectionTitle, testConfidenceConfig())
	if got != ConfidenceLow || !covered {
		t.Errorf("Classify(focused) = (%s, %v), want (low, true)", got, covered)
	}
}

func TestClassify_LowWithClearLeader(t *testing.T) {
	// Distinct sections but a real gap between first and third.
	results := fusedWithScores(0.62, 0.56, 0.50)

	got, covered := Classify(results, sectionTitle, testConfidenceConfig())
	if got != ConfidenceLow || !covered {
		t.Errorf("Classify(leader) = (%s, %v), want (low, true)", got, covered)
	}
}

func TestClassify_MonotonicInTopScore(t *testing.T) {
	cfg := testConfidenceConfig()

	rank := map[Confidence]int{
		ConfidenceNone:   0,
		ConfidenceLow:    1,
		ConfidenceMedium: 2,
		ConfidenceHigh:   3,
	}

	prev := -1
	for top := 0.50; top <= 0.90; top += 0.01 {
		results := fusedWithScores(top, 0.48, 0.46)
		got, _ := Classify(results, sectionTitle, cfg)
		if rank[got] < prev {
			t.Fatalf("confidence decreased at top=%v: %s", top, got)
		}
		prev = rank[got]
	}
}
