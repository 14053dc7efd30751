package search

import (
	"fmt"
	"testing"
)

func testFusionConfig() FusionConfig {
	return FusionConfig{
		RRFConstant:   60,
		CuratedWeight: 1.2,
		CuratedWindow: 10,
		ContentWindow: 20,
		TieEpsilon:    0.0001,
	}
}

func contentCandidates(sims ...float64) []Candidate {
	out := make([]Candidate, len(sims))
	for i, s := range sims {
		out[i] = Candidate{
			ID:         fmt.Sprintf("chunk-%d", i),
			SectionID:  fmt.Sprintf("110-300-%04d", i),
			Source:     SourceContent,
			Text:       "some regulation text",
			Similarity: s,
		}
	}
	return out
}

func TestFuseRRF_TopDenseCandidateWins(t *testing.T) {
	dense := contentCandidates(0.9, 0.7, 0.5)

	fused := FuseRRF(nil, dense, nil, Intent{}, testFusionConfig(), testBoostConfig(), 5)

	if len(fused) != 3 {
		t.Fatalf("len(fused) = %d, want 3", len(fused))
	}
	if fused[0].ID != "chunk-0" {
		t.Errorf("top fused = %s, want chunk-0", fused[0].ID)
	}
}

func TestFuseRRF_WindowExcludesBeyondLimit(t *testing.T) {
	cfg := testFusionConfig()
	cfg.ContentWindow = 2

	dense := contentCandidates(0.9, 0.8, 0.99)

	fused := FuseRRF(nil, dense, nil, Intent{}, cfg, testBoostConfig(), 5)

	for _, f := range fused {
		if f.ID == "chunk-2" {
			t.Error("candidate outside the content window admitted into fusion")
		}
	}
	if len(fused) != 2 {
		t.Errorf("len(fused) = %d, want 2", len(fused))
	}
}

func TestFuseRRF_CuratedWeightOnlyWhenCuratedLeads(t *testing.T) {
	cfg := testFusionConfig()

	curated := []Candidate{{
		ID:         "How long can formula sit out?",
		SectionID:  "110-300-0180",
		Source:     SourceCurated,
		Text:       "Discard formula within one hour.",
		Similarity: 0.9,
	}}
	dense := []Candidate{{
		ID:         "chunk-a",
		SectionID:  "110-300-0350",
		Source:     SourceContent,
		Text:       "Unrelated section.",
		Similarity: 0.6,
	}}

	fused := FuseRRF(curated, dense, nil, Intent{}, cfg, testBoostConfig(), 5)

	// Both are rank 0 in their lists; the curated one carries 1.2/(60+1)
	// against 1.0/(60+1), so it must sort first.
	if fused[0].Source != SourceCurated {
		t.Errorf("curated candidate with higher similarity should lead, got %s", fused[0].Source)
	}

	// Flip: content similarity exceeds curated — curated drops to 1.0
	// weight, fused scores tie, raw similarity breaks it for content.
	curated[0].Similarity = 0.6
	dense[0].Similarity = 0.9

	fused = FuseRRF(curated, dense, nil, Intent{}, cfg, testBoostConfig(), 5)
	if fused[0].Source != SourceContent {
		t.Errorf("content candidate with higher similarity should lead, got %s", fused[0].Source)
	}
}

func TestFuseRRF_DedupesBySection(t *testing.T) {
	dense := []Candidate{
		{ID: "chunk-a", SectionID: "110-300-0180", Source: SourceContent, Similarity: 0.9},
		{ID: "chunk-b", SectionID: "110-300-0180", Source: SourceContent, Similarity: 0.85},
		{ID: "chunk-c", SectionID: "110-300-0350", Source: SourceContent, Similarity: 0.8},
	}

	fused := FuseRRF(nil, dense, nil, Intent{}, testFusionConfig(), testBoostConfig(), 5)

	seen := map[string]bool{}
	for _, f := range fused {
		if seen[f.SectionID] {
			t.Errorf("duplicate section %s in fused results", f.SectionID)
		}
		seen[f.SectionID] = true
	}
	if len(fused) != 2 {
		t.Errorf("len(fused) = %d, want 2 after dedup", len(fused))
	}
}

func TestFuseRRF_BothSignalsOutrankOne(t *testing.T) {
	// chunk-b appears in both dense and lexical lists at rank 1 and
	// rank 0; chunk-a only in dense at rank 0. Two mid contributions
	// beat one top contribution.
	dense := []Candidate{
		{ID: "chunk-a", SectionID: "s-a", Source: SourceContent, Similarity: 0.8},
		{ID: "chunk-b", SectionID: "s-b", Source: SourceContent, Similarity: 0.79},
	}
	lexical := []Candidate{
		{ID: "chunk-b", SectionID: "s-b", Source: SourceContent, Similarity: 0.79},
	}

	fused := FuseRRF(nil, dense, lexical, Intent{}, testFusionConfig(), testBoostConfig(), 5)

	if fused[0].ID != "chunk-b" {
		t.Errorf("candidate matched by both signals should lead, got %s", fused[0].ID)
	}
}

func TestFuseRRF_IntentBoostReorders(t *testing.T) {
	dense := []Candidate{
		{ID: "chunk-a", SectionID: "s-a", Source: SourceContent, Text: "general cleanliness rules", Similarity: 0.8},
		{ID: "chunk-b", SectionID: "s-b", Source: SourceContent, Text: "discard within one hour", Similarity: 0.78},
	}

	fused := FuseRRF(nil, dense, nil, Intent{Time: true}, testFusionConfig(), testBoostConfig(), 5)

	// 1.2x on rank-1 (1/62 * 1.2 ≈ 0.01935) beats rank-0 (1/61 ≈ 0.01639).
	if fused[0].ID != "chunk-b" {
		t.Errorf("time-boosted candidate should lead, got %s", fused[0].ID)
	}
}

func TestFuseRRF_TopKCut(t *testing.T) {
	dense := contentCandidates(0.9, 0.8, 0.7, 0.6, 0.5)

	fused := FuseRRF(nil, dense, nil, Intent{}, testFusionConfig(), testBoostConfig(), 2)
	if len(fused) != 2 {
		t.Errorf("len(fused) = %d, want 2", len(fused))
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	dense := contentCandidates(0.8, 0.8, 0.8, 0.8)
	lexical := contentCandidates(0.8, 0.8, 0.8, 0.8)

	first := FuseRRF(nil, dense, lexical, Intent{}, testFusionConfig(), testBoostConfig(), 4)
	for i := 0; i < 20; i++ {
		again := FuseRRF(nil, dense, lexical, Intent{}, testFusionConfig(), testBoostConfig(), 4)
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d vs %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].ID != first[j].ID {
				t.Fatalf("run %d: order differs at %d: %s vs %s", i, j, again[j].ID, first[j].ID)
			}
		}
	}
}
