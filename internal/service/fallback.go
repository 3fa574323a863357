package service

import (
	"sort"

	"github.com/symptom-intake-server/internal/domain"
)

// FallbackMatcher scores symptom sets against the canonical disease
// profile table. It is the sole prediction path while no model is active
// and the safety net when statistical confidence falls below the gate.
type FallbackMatcher struct {
	profiles domain.ProfileTable
	ordered  []string
	minScore float64
}

// NewFallbackMatcher normalizes the profile table once and fixes a sorted
// evaluation order so tied scores always resolve to the lexicographically
// smallest disease label.
func NewFallbackMatcher(profiles domain.ProfileTable, minScore float64) *FallbackMatcher {
	normalized := profiles.Normalize()
	ordered := make([]string, 0, len(normalized))
	for disease := range normalized {
		ordered = append(ordered, disease)
	}
	sort.Strings(ordered)

	return &FallbackMatcher{
		profiles: normalized,
		ordered:  ordered,
		minScore: minScore,
	}
}

// Match computes, for every profile, the fraction of its defining symptoms
// present in the query (recall-style overlap, not Jaccard) and returns the
// best-scoring disease. Scores at or below the threshold yield the Unknown
// sentinel.
func (m *FallbackMatcher) Match(symptoms domain.SymptomSet) domain.Prediction {
	query := make(map[string]struct{}, len(symptoms))
	for _, code := range symptoms {
		query[code] = struct{}{}
	}

	bestDisease := ""
	bestScore := 0.0
	for _, disease := range m.ordered {
		profile := m.profiles[disease]
		if len(profile) == 0 {
			continue
		}
		common := 0
		for _, code := range profile {
			if _, ok := query[code]; ok {
				common++
			}
		}
		// Strictly greater keeps the first (smallest) label on ties.
		if score := float64(common) / float64(len(profile)); score > bestScore {
			bestScore = score
			bestDisease = disease
		}
	}

	if bestDisease == "" || bestScore <= m.minScore {
		return domain.Unknown()
	}
	return domain.Prediction{
		Disease:    bestDisease,
		Confidence: bestScore,
		Source:     domain.SourceFallback,
	}
}

// Diseases returns the profile labels in evaluation order.
func (m *FallbackMatcher) Diseases() []string {
	return m.ordered
}
