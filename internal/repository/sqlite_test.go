package repository

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-intake-server/internal/corpus"
	"github.com/symptom-intake-server/internal/domain"
)

func createTestRepository(t *testing.T) *SQLiteIntakeRepository {
	t.Helper()

	db, err := corpus.OpenSQLite(filepath.Join(t.TempDir(), "intake.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo, err := NewSQLiteIntakeRepository(db, logger)
	require.NoError(t, err)
	return repo
}

func sampleRecord() *domain.IntakeRecord {
	return &domain.IntakeRecord{
		Name:          "Ananya Sharma",
		Phone:         "9876543210",
		AdmissionDate: "2026-01-15",
		Symptoms:      domain.SymptomSet{"fever", "cough"},
		Disease:       "Flu",
		Confidence:    0.82,
		Status:        domain.StatusRequiresAttention,
	}
}

func TestSQLiteIntakeRepository_Create(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	record := sampleRecord()

	// Act
	err := repo.Create(ctx, record)

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, record.ID, "ID should be assigned")
	assert.False(t, record.CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestSQLiteIntakeRepository_CreateKeepsProvidedID(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	record := sampleRecord()
	record.ID = uuid.New()
	want := record.ID

	err := repo.Create(ctx, record)

	require.NoError(t, err)
	assert.Equal(t, want, record.ID)
}

func TestSQLiteIntakeRepository_List(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	first := sampleRecord()
	require.NoError(t, repo.Create(ctx, first))

	second := sampleRecord()
	second.Name = "Rohan Patel"
	second.Disease = domain.LabelUnknown
	second.Confidence = 0.0
	second.Status = domain.StatusGood
	require.NoError(t, repo.Create(ctx, second))

	// Act
	records, err := repo.List(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 2)

	byName := map[string]*domain.IntakeRecord{}
	for _, r := range records {
		byName[r.Name] = r
	}
	require.Contains(t, byName, "Ananya Sharma")
	require.Contains(t, byName, "Rohan Patel")
	assert.Equal(t, domain.SymptomSet{"cough", "fever"}, byName["Ananya Sharma"].Symptoms)
	assert.Equal(t, domain.StatusGood, byName["Rohan Patel"].Status)
	assert.Equal(t, 0.82, byName["Ananya Sharma"].Confidence)
}

func TestSQLiteIntakeRepository_Delete(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	record := sampleRecord()
	require.NoError(t, repo.Create(ctx, record))

	// Act
	err := repo.Delete(ctx, record.ID)

	// Assert
	require.NoError(t, err)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteIntakeRepository_DeleteMissing(t *testing.T) {
	repo := createTestRepository(t)

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteIntakeRepository_Count(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(ctx, sampleRecord()))
	require.NoError(t, repo.Create(ctx, sampleRecord()))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
