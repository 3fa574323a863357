package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-intake-server/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")

	// Act
	store, err := NewSQLiteStore(dbPath)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_AddAndList(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	// Act
	err := store.AddTrainingExample(ctx, domain.TrainingExample{
		Symptoms: domain.SymptomSet{"Fever", "cough", "fever"},
		Disease:  "Flu",
	})
	require.NoError(t, err)

	examples, err := store.ListTrainingExamples(ctx)

	// Assert: symptoms come back normalized and deduplicated.
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "Flu", examples[0].Disease)
	assert.Equal(t, domain.SymptomSet{"cough", "fever"}, examples[0].Symptoms)
	assert.NotZero(t, examples[0].ID)
}

func TestSQLiteStore_ListPreservesInsertionOrder(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, example := range domain.DefaultTrainingCorpus() {
		require.NoError(t, store.AddTrainingExample(ctx, example))
	}

	// Act
	examples, err := store.ListTrainingExamples(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, examples, 8)
	for i, example := range domain.DefaultTrainingCorpus() {
		assert.Equal(t, example.Disease, examples[i].Disease)
	}
}

func TestSQLiteStore_ClearAndCount(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, example := range domain.DefaultTrainingCorpus() {
		require.NoError(t, store.AddTrainingExample(ctx, example))
	}

	count, err := store.CountTrainingExamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)

	// Act
	require.NoError(t, store.ClearTrainingExamples(ctx))

	// Assert
	count, err = store.CountTrainingExamples(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	examples, err := store.ListTrainingExamples(ctx)
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestSeededSource_EmptyStoreFallsBackToDefaults(t *testing.T) {
	store := createTestStore(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	source := NewSeededSource(store, logger)

	// Act
	examples, err := source.ListTrainingExamples(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTrainingCorpus(), examples)
}

func TestSeededSource_StoredExamplesWin(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrainingExample(ctx, domain.TrainingExample{
		Symptoms: domain.SymptomSet{"fever"},
		Disease:  "Flu",
	}))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	source := NewSeededSource(store, logger)

	// Act
	examples, err := source.ListTrainingExamples(ctx)

	// Assert: one stored example beats eight defaults.
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "Flu", examples[0].Disease)
}
