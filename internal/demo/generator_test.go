package demo

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-intake-server/internal/corpus"
	"github.com/symptom-intake-server/internal/domain"
	"github.com/symptom-intake-server/internal/repository"
)

func TestGenerator_Record(t *testing.T) {
	g := NewGenerator(1, domain.DefaultDiseaseProfiles())
	names := domain.SymptomDisplayNames()

	for i := 0; i < 50; i++ {
		record := g.Record()

		assert.NotEmpty(t, record.Name)
		assert.Len(t, record.Phone, 10)
		assert.NotEmpty(t, record.AdmissionDate)
		require.NotEmpty(t, record.Symptoms)
		for _, code := range record.Symptoms {
			assert.Contains(t, names, code)
		}
	}
}

func TestGenerator_Reproducible(t *testing.T) {
	first := NewGenerator(7, domain.DefaultDiseaseProfiles()).Records(20)
	second := NewGenerator(7, domain.DefaultDiseaseProfiles()).Records(20)

	require.Len(t, second, 20)
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Phone, second[i].Phone)
		assert.Equal(t, first[i].Symptoms, second[i].Symptoms)
	}
}

// staticClassifier answers every query the same way.
type staticClassifier struct {
	prediction domain.Prediction
}

func (c *staticClassifier) Predict(domain.SymptomSet) domain.Prediction  { return c.prediction }
func (c *staticClassifier) Train(context.Context) error                 { return nil }
func (c *staticClassifier) TrainWith(context.Context, []domain.TrainingExample) error {
	return nil
}
func (c *staticClassifier) Info() domain.EngineInfo            { return domain.EngineInfo{} }
func (c *staticClassifier) SaveModel(context.Context) error    { return nil }
func (c *staticClassifier) LoadModel(context.Context) error    { return nil }

func TestSeed(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := corpus.OpenSQLite(filepath.Join(t.TempDir(), "demo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewSQLiteIntakeRepository(db, logger)
	require.NoError(t, err)

	engine := &staticClassifier{prediction: domain.Prediction{
		Disease:    "Flu",
		Confidence: 0.8,
		Source:     domain.SourceModel,
	}}

	// Act
	g := NewGenerator(3, domain.DefaultDiseaseProfiles())
	require.NoError(t, Seed(context.Background(), g, engine, repo, 10))

	// Assert
	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 10)
	for _, record := range records {
		assert.Equal(t, "Flu", record.Disease)
		assert.Equal(t, domain.StatusRequiresAttention, record.Status)
	}
}
