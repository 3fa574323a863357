package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymptomSet_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input SymptomSet
		want  SymptomSet
	}{
		{
			name:  "lowercases and trims",
			input: SymptomSet{" Fever ", "COUGH"},
			want:  SymptomSet{"cough", "fever"},
		},
		{
			name:  "deduplicates",
			input: SymptomSet{"fever", "fever", "Fever"},
			want:  SymptomSet{"fever"},
		},
		{
			name:  "drops empty entries",
			input: SymptomSet{"", "  ", "rash"},
			want:  SymptomSet{"rash"},
		},
		{
			name:  "sorts",
			input: SymptomSet{"nausea", "cough", "fever"},
			want:  SymptomSet{"cough", "fever", "nausea"},
		},
		{
			name:  "nil stays empty",
			input: nil,
			want:  SymptomSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.Normalize())
		})
	}
}

func TestSymptomSet_Key(t *testing.T) {
	a := SymptomSet{"Fever", "cough"}
	b := SymptomSet{"cough", "fever", "FEVER"}

	// Order, case and duplicates never change identity.
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), SymptomSet{"cough"}.Key())
}

func TestUnknown(t *testing.T) {
	p := Unknown()

	assert.Equal(t, LabelUnknown, p.Disease)
	assert.Equal(t, 0.0, p.Confidence)
	assert.Equal(t, SourceNone, p.Source)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusGood, StatusFor(Unknown()))
	assert.Equal(t, StatusRequiresAttention, StatusFor(Prediction{
		Disease:    "Flu",
		Confidence: 0.7,
		Source:     SourceModel,
	}))
}

func TestEngineState_String(t *testing.T) {
	assert.Equal(t, "untrained", StateUntrained.String())
	assert.Equal(t, "training", StateTraining.String())
	assert.Equal(t, "trained", StateTrained.String())
	assert.Equal(t, "unknown", EngineState(99).String())
}

func TestDefaultDiseaseProfiles_CoveredByDisplayNames(t *testing.T) {
	names := SymptomDisplayNames()

	for disease, symptoms := range DefaultDiseaseProfiles() {
		for _, code := range symptoms {
			assert.Contains(t, names, code, "profile %s", disease)
		}
	}
}

func TestDefaultTrainingCorpus_LabelsMatchProfiles(t *testing.T) {
	profiles := DefaultDiseaseProfiles()

	for _, example := range DefaultTrainingCorpus() {
		assert.Contains(t, profiles, example.Disease)
		assert.NotEmpty(t, example.Symptoms)
	}
}
