// Package modelstore persists trained models as opaque versioned blobs.
// Every blob carries a format tag and version so incompatible loads fail
// cleanly instead of silently misbehaving.
package modelstore

import (
	"encoding/json"
	"fmt"

	"github.com/symptom-intake-server/internal/domain"
)

const (
	// FormatTag identifies blobs produced by this package.
	FormatTag = "symptom-model"

	// FormatVersion is bumped whenever the model layout changes
	// incompatibly.
	FormatVersion = 1
)

// envelope is the serialized blob layout.
type envelope struct {
	Format  string        `json:"format"`
	Version int           `json:"version"`
	Model   *domain.Model `json:"model"`
}

// Encode serializes a model into a versioned blob.
func Encode(model *domain.Model) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Format:  FormatTag,
		Version: FormatVersion,
		Model:   model,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding model envelope: %w", err)
	}
	return data, nil
}

// Decode validates a blob's envelope and returns the contained model.
// Corrupt payloads and format or version mismatches return
// domain.ErrEnvelopeMismatch (possibly wrapped).
func Decode(data []byte) (*domain.Model, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEnvelopeMismatch, err)
	}
	if env.Format != FormatTag {
		return nil, fmt.Errorf("%w: unexpected format %q", domain.ErrEnvelopeMismatch, env.Format)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", domain.ErrEnvelopeMismatch, env.Version, FormatVersion)
	}
	if env.Model == nil {
		return nil, fmt.Errorf("%w: envelope carries no model", domain.ErrEnvelopeMismatch)
	}
	if err := validateModel(env.Model); err != nil {
		return nil, err
	}
	return env.Model, nil
}

// validateModel rejects structurally inconsistent models. A blob can carry
// the right tag and version yet still be gutted or hand-edited; publishing
// such a model would crash the prediction path, which must never fail.
func validateModel(m *domain.Model) error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("%w: model has no labels", domain.ErrEnvelopeMismatch)
	}
	if len(m.ClassLogPrior) != len(m.Labels) {
		return fmt.Errorf("%w: %d class priors for %d labels",
			domain.ErrEnvelopeMismatch, len(m.ClassLogPrior), len(m.Labels))
	}
	if len(m.FeatureLogProb) != len(m.Labels) {
		return fmt.Errorf("%w: %d likelihood rows for %d labels",
			domain.ErrEnvelopeMismatch, len(m.FeatureLogProb), len(m.Labels))
	}
	if len(m.IDF) != len(m.Vocabulary) {
		return fmt.Errorf("%w: %d idf weights for %d vocabulary columns",
			domain.ErrEnvelopeMismatch, len(m.IDF), len(m.Vocabulary))
	}
	for i, row := range m.FeatureLogProb {
		if len(row) != len(m.Vocabulary) {
			return fmt.Errorf("%w: likelihood row %d has %d columns, want %d",
				domain.ErrEnvelopeMismatch, i, len(row), len(m.Vocabulary))
		}
	}
	return nil
}
