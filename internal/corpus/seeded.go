package corpus

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/domain"
)

// SeededSource wraps a corpus store and substitutes the built-in default
// corpus when the store is empty, so a fresh deployment can train a usable
// model before any operator-provided examples arrive.
type SeededSource struct {
	store  domain.CorpusStore
	logger *logrus.Logger
}

// NewSeededSource wraps store with the default-corpus fallback.
func NewSeededSource(store domain.CorpusStore, logger *logrus.Logger) *SeededSource {
	return &SeededSource{store: store, logger: logger}
}

// ListTrainingExamples returns the stored corpus, or the seed corpus when
// the store holds nothing.
func (s *SeededSource) ListTrainingExamples(ctx context.Context) ([]domain.TrainingExample, error) {
	examples, err := s.store.ListTrainingExamples(ctx)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		s.logger.Info("Training store is empty, using default seed corpus")
		return domain.DefaultTrainingCorpus(), nil
	}
	return examples, nil
}

var _ domain.CorpusSource = (*SeededSource)(nil)
