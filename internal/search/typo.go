package search

import (
	"sort"
	"strings"
)

// Correction thresholds. Short tokens generate too many false matches, so
// anything under minCorrectLen is passed through as typed.
const (
	minCorrectLen = 5

	// longTokenLen is the length at which two edits are tolerated
	// instead of one.
	longTokenLen   = 8
	shortMaxDist   = 1
	longMaxDist    = 2
	minConsiderLen = 3
)

// stoplist holds common English and domain words that are never corrected
// even when absent from the harvested vocabulary.
var stoplist = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "allow": {}, "allowed": {},
	"before": {}, "being": {}, "cannot": {}, "child": {}, "children": {},
	"could": {}, "daycare": {}, "doing": {}, "every": {}, "having": {},
	"kiddo": {}, "kiddos": {}, "often": {}, "other": {}, "should": {},
	"their": {}, "there": {}, "these": {}, "thing": {}, "things": {},
	"those": {}, "until": {}, "washington": {}, "where": {}, "which": {},
	"while": {}, "would": {},
}

// Vocabulary is the set of known corpus words used for typo correction.
// It is rebuilt from the loaded corpus once per process and never mutated
// afterwards, so concurrent queries may share it freely.
type Vocabulary struct {
	set map[string]struct{}

	// words holds the set in sorted order so correction candidates are
	// scanned deterministically.
	words []string
}

// NewVocabulary harvests lowercase alphabetic tokens from the given texts.
// Tokens shorter than three characters are dropped.
func NewVocabulary(texts []string) *Vocabulary {
	set := make(map[string]struct{})
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if !isAlpha(tok) {
				continue
			}
			set[tok] = struct{}{}
		}
	}

	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)

	return &Vocabulary{set: set, words: words}
}

// Size returns the number of distinct vocabulary words.
func (v *Vocabulary) Size() int {
	return len(v.words)
}

// Contains reports whether the word is in the vocabulary.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.set[word]
	return ok
}

// Correct applies vocabulary-based typo correction to each whitespace
// token of the query. Every output token is lowercased. It reports whether
// at least one token was replaced; callers use the corrected string for
// search only in that case and may surface it as a "did you mean" hint.
func (v *Vocabulary) Correct(query string) (string, bool) {
	tokens := strings.Fields(query)
	corrected := false

	out := make([]string, len(tokens))
	for i, tok := range tokens {
		lowered := strings.ToLower(tok)
		out[i] = lowered

		if len(lowered) < minConsiderLen || len(lowered) < minCorrectLen {
			continue
		}
		if !isAlpha(lowered) {
			continue
		}
		if v.Contains(lowered) {
			continue
		}
		if _, stop := stoplist[lowered]; stop {
			continue
		}

		if match, ok := v.closestWord(lowered); ok {
			out[i] = match
			corrected = true
		}
	}

	return strings.Join(out, " "), corrected
}

// closestWord finds the vocabulary word with the smallest edit distance to
// the token, subject to the correction constraints. Candidates are scanned
// in sorted order, so ties resolve to the lexicographically smallest word.
func (v *Vocabulary) closestWord(token string) (string, bool) {
	maxDist := shortMaxDist
	if len(token) >= longTokenLen {
		maxDist = longMaxDist
	}

	best := ""
	bestDist := maxDist + 1

	for _, word := range v.words {
		diff := len(word) - len(token)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDist {
			continue
		}
		// Substring pairs are usually singular/plural or stemming
		// variants, not typos.
		if strings.Contains(word, token) || strings.Contains(token, word) {
			continue
		}

		dist := levenshtein(token, word)
		if dist < bestDist {
			best = word
			bestDist = dist
		}
	}

	if bestDist > maxDist {
		return "", false
	}
	return best, true
}

// levenshtein computes edit distance with unit-cost insertion, deletion
// and substitution using the full DP table.
func levenshtein(a, b string) int {
	m, n := len(a), len(b)

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(s) > 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
