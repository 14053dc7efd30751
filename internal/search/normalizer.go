package search

import (
	"sort"
	"strings"
)

// SynonymTable maps casual/colloquial terms to domain-specific alternates.
// Keys are matched as substrings of the lowercased query; matched keys have
// all of their terms appended to the search text. The expanded text is an
// internal retrieval aid only and is never shown to the user.
type SynonymTable map[string][]string

// DefaultSynonyms returns the built-in mapping from parent-speak to the
// regulatory vocabulary used in licensing rules.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"puree":     {"leftover", "prepared food", "refrigerated", "served food"},
		"baby food": {"infant food", "formula", "prepared food"},
		"bottle":    {"formula", "breast milk", "infant feeding"},
		"shots":     {"immunization", "vaccine", "vaccination records"},
		"sick":      {"illness", "symptoms", "fever", "exclusion"},
		"nap":       {"rest period", "sleep equipment", "overnight care"},
		"potty":     {"toilet training", "toilet learning", "diapering"},
		"diaper":    {"diapering", "changing area", "sanitize"},
		"outside":   {"outdoor play", "playground", "outdoor space"},
		"yard":      {"outdoor play area", "fencing", "playground"},
		"medicine":  {"medication", "medication management", "prescription"},
		"allergy":   {"allergies", "food allergy", "individual care plan"},
		"snack":     {"meals and snacks", "food service", "nutrition"},
		"field trip": {"off-site activity", "transportation", "supervision"},
		"babysitter": {"staff", "lead teacher", "qualifications"},
	}
}

// ExpandQuery appends synonym terms for every table key contained in the
// lowercased query. Keys are scanned in sorted order so expansion is
// deterministic.
func ExpandQuery(query string, table SynonymTable) string {
	if len(table) == 0 {
		return query
	}

	lowered := strings.ToLower(query)

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var extra []string
	for _, key := range keys {
		if strings.Contains(lowered, key) {
			extra = append(extra, table[key]...)
		}
	}

	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}

// CategoryKeywords maps coarse corpus categories to trigger words. A query
// containing a trigger maps to that category; candidates in the same
// category get a small boost.
type CategoryKeywords map[string][]string

// DefaultCategories returns the built-in category trigger lists.
func DefaultCategories() CategoryKeywords {
	return CategoryKeywords{
		"health_safety":  {"sick", "illness", "medication", "injury", "sanitize", "wash"},
		"nutrition":      {"food", "formula", "meal", "snack", "bottle", "feeding"},
		"supervision":    {"ratio", "supervise", "supervision", "group size", "staff"},
		"environment":    {"playground", "outdoor", "fence", "equipment", "space"},
		"sleep":          {"nap", "sleep", "crib", "rest", "overnight"},
		"administration": {"license", "records", "training", "background check"},
	}
}

// MatchCategory returns the first category (in sorted key order) whose
// trigger words appear in the lowercased query, or "" when none match.
func MatchCategory(query string, categories CategoryKeywords) string {
	if len(categories) == 0 {
		return ""
	}

	lowered := strings.ToLower(query)

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, trigger := range categories[name] {
			if strings.Contains(lowered, trigger) {
				return name
			}
		}
	}
	return ""
}
