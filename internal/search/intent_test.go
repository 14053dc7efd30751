package search

import (
	"math"
	"testing"
)

func testBoostConfig() BoostConfig {
	return BoostConfig{TimeBoost: 1.2, NumericBoost: 1.1, CategoryBoost: 1.1}
}

func TestDetectIntent(t *testing.T) {
	categories := DefaultCategories()

	tests := []struct {
		query       string
		wantTime    bool
		wantNumeric bool
	}{
		{"how long can formula sit out", true, false},
		{"how many infants per adult", false, true},
		{"what is the maximum group size", false, true},
		{"where is handwashing required", false, false},
		{"storage rules for breast milk", true, false},
	}

	for _, tt := range tests {
		got := DetectIntent(tt.query, categories)
		if got.Time != tt.wantTime || got.Numeric != tt.wantNumeric {
			t.Errorf("DetectIntent(%q) = {Time:%v Numeric:%v}, want {Time:%v Numeric:%v}",
				tt.query, got.Time, got.Numeric, tt.wantTime, tt.wantNumeric)
		}
	}
}

func TestBoostFactor_TimeIntent(t *testing.T) {
	intent := Intent{Time: true}
	cfg := testBoostConfig()

	got := intent.BoostFactor("discard within one hour of preparation", "", cfg)
	if math.Abs(got-1.2) > 1e-9 {
		t.Errorf("time boost = %v, want 1.2", got)
	}

	got = intent.BoostFactor("handwashing sink requirements", "", cfg)
	if got != 1.0 {
		t.Errorf("no time-unit words should mean no boost, got %v", got)
	}
}

func TestBoostFactor_NumericIntent(t *testing.T) {
	intent := Intent{Numeric: true}
	cfg := testBoostConfig()

	got := intent.BoostFactor("ratio of 1 staff to 4 infants", "", cfg)
	if math.Abs(got-1.1) > 1e-9 {
		t.Errorf("numeric boost = %v, want 1.1", got)
	}

	got = intent.BoostFactor("no digits in this text", "", cfg)
	if got != 1.0 {
		t.Errorf("digit-free text should not boost, got %v", got)
	}
}

func TestBoostFactor_Composes(t *testing.T) {
	intent := Intent{Time: true, Numeric: true, Category: "nutrition"}
	cfg := testBoostConfig()

	got := intent.BoostFactor("discard formula after 1 hour", "nutrition", cfg)
	want := 1.2 * 1.1 * 1.1
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("composed boost = %v, want %v", got, want)
	}
}

func TestBoostFactor_CategoryMismatch(t *testing.T) {
	intent := Intent{Category: "nutrition"}
	cfg := testBoostConfig()

	if got := intent.BoostFactor("some text", "sleep", cfg); got != 1.0 {
		t.Errorf("category mismatch should not boost, got %v", got)
	}
}
