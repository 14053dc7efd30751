package search

import "strings"

// Intent trigger phrases, matched against the raw query before synonym
// expansion so expansion terms never fabricate intent.
var (
	timeIntentPhrases = []string{
		"how long", "duration", "expire", "expires", "expired",
		"store", "storage", "sit out", "keep", "until when",
	}

	numericIntentPhrases = []string{
		"how many", "how much", "minimum", "maximum", "at least",
		"at most", "ratio", "limit", "number of",
	}

	// timeUnitWords flag candidate text that actually answers a
	// time/duration question.
	timeUnitWords = []string{
		"hour", "minute", "day", "week", "month", "year",
		"within", "immediately", "daily", "annually",
	}
)

// Intent captures what kind of answer the query is after.
type Intent struct {
	Time     bool
	Numeric  bool
	Category string
}

// DetectIntent inspects the raw query for time/duration and numeric
// phrasing and maps it to a coarse corpus category where possible.
func DetectIntent(rawQuery string, categories CategoryKeywords) Intent {
	lowered := strings.ToLower(rawQuery)

	intent := Intent{Category: MatchCategory(rawQuery, categories)}
	for _, phrase := range timeIntentPhrases {
		if strings.Contains(lowered, phrase) {
			intent.Time = true
			break
		}
	}
	for _, phrase := range numericIntentPhrases {
		if strings.Contains(lowered, phrase) {
			intent.Numeric = true
			break
		}
	}
	return intent
}

// BoostFactor returns the multiplier to apply to a fused candidate's score
// given its text and category. Factors compose multiplicatively and are
// independent of the fusion weights.
func (in Intent) BoostFactor(text, category string, cfg BoostConfig) float64 {
	factor := 1.0
	lowered := strings.ToLower(text)

	if in.Time && containsAny(lowered, timeUnitWords) {
		factor *= cfg.TimeBoost
	}
	if in.Numeric && containsDigit(lowered) {
		factor *= cfg.NumericBoost
	}
	if in.Category != "" && in.Category == category {
		factor *= cfg.CategoryBoost
	}
	return factor
}

// BoostConfig holds the intent multipliers. These are empirically tuned
// heuristics, not derived values; treat them as configuration.
type BoostConfig struct {
	TimeBoost     float64
	NumericBoost  float64
	CategoryBoost float64
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func containsDigit(text string) bool {
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
