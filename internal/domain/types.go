// Package domain contains the core business entities for symptom-based
// condition classification. Predictions are best-effort triage suggestions
// for a health-intake workflow, never a clinical diagnosis.
package domain

import (
	"sort"
	"strings"
)

// LabelUnknown is the reserved sentinel label returned when neither the
// statistical path nor the fallback matcher finds a sufficient match.
// It always pairs with confidence 0.0.
const LabelUnknown = "Unknown"

// SymptomSet is an unordered collection of symptom codes. Codes outside the
// known vocabulary are carried as opaque tokens rather than rejected.
type SymptomSet []string

// Normalize lowercases, trims, deduplicates and sorts the symptom codes.
// The result is the canonical form used for training, prediction and
// cache keys.
func (s SymptomSet) Normalize() SymptomSet {
	seen := make(map[string]struct{}, len(s))
	out := make(SymptomSet, 0, len(s))
	for _, code := range s {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Key returns a stable string identity for the normalized set.
func (s SymptomSet) Key() string {
	return strings.Join(s.Normalize(), "\x1f")
}

// TrainingExample pairs a symptom set with its known condition label.
type TrainingExample struct {
	ID        int64      `json:"id,omitempty"`
	Symptoms  SymptomSet `json:"symptoms"`
	Disease   string     `json:"disease"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// PredictionSource identifies which path produced a prediction.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceFallback PredictionSource = "fallback"
	SourceNone     PredictionSource = "none"
)

// Prediction is the engine's answer for a symptom set.
// Confidence is always in [0,1]; LabelUnknown pairs with 0.0.
type Prediction struct {
	Disease    string           `json:"disease"`
	Confidence float64          `json:"confidence"`
	Source     PredictionSource `json:"source"`
}

// Unknown returns the sentinel prediction for insufficient matches.
func Unknown() Prediction {
	return Prediction{Disease: LabelUnknown, Confidence: 0.0, Source: SourceNone}
}

// EngineState is the explicit lifecycle state of the classification engine,
// replacing implicit "is the model nil" checks.
type EngineState int32

const (
	StateUntrained EngineState = iota
	StateTraining
	StateTrained
)

// String returns the lowercase state name.
func (s EngineState) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTraining:
		return "training"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// EngineInfo summarizes the engine for the health and model endpoints.
type EngineInfo struct {
	Trained      bool     `json:"trained"`
	State        string   `json:"state"`
	Diseases     []string `json:"diseases"`
	DiseaseCount int      `json:"disease_count"`
	ExampleCount int      `json:"example_count"`
}
