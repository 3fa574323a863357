package corpus

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-intake-server/internal/domain"
)

func createMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	return store, mock
}

func TestPostgresStore_AddTrainingExample(t *testing.T) {
	store, mock := createMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO training_examples").
		WithArgs(`["cough","fever"]`, "Flu").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Act
	err := store.AddTrainingExample(context.Background(), domain.TrainingExample{
		Symptoms: domain.SymptomSet{"Fever", "cough"},
		Disease:  "Flu",
	})

	// Assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTrainingExamples(t *testing.T) {
	store, mock := createMockPostgresStore(t)

	rows := sqlmock.NewRows([]string{"id", "symptoms", "disease", "created_at"}).
		AddRow(1, `["cough","fever"]`, "Flu", "2026-01-15T10:00:00Z").
		AddRow(2, `["nausea"]`, "Migraine", "2026-01-16T10:00:00Z")
	mock.ExpectQuery("SELECT id, symptoms, disease, created_at").WillReturnRows(rows)

	// Act
	examples, err := store.ListTrainingExamples(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, int64(1), examples[0].ID)
	assert.Equal(t, domain.SymptomSet{"cough", "fever"}, examples[0].Symptoms)
	assert.Equal(t, "Migraine", examples[1].Disease)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRejectsCorruptSymptoms(t *testing.T) {
	store, mock := createMockPostgresStore(t)

	rows := sqlmock.NewRows([]string{"id", "symptoms", "disease", "created_at"}).
		AddRow(1, `not-json`, "Flu", "2026-01-15T10:00:00Z")
	mock.ExpectQuery("SELECT id, symptoms, disease, created_at").WillReturnRows(rows)

	// Act
	_, err := store.ListTrainingExamples(context.Background())

	// Assert
	assert.Error(t, err)
}

func TestPostgresStore_ClearTrainingExamples(t *testing.T) {
	store, mock := createMockPostgresStore(t)

	mock.ExpectExec("DELETE FROM training_examples").
		WillReturnResult(sqlmock.NewResult(0, 8))

	err := store.ClearTrainingExamples(context.Background())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountTrainingExamples(t *testing.T) {
	store, mock := createMockPostgresStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	count, err := store.CountTrainingExamples(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
}

func TestNewPostgresStore_NilConnection(t *testing.T) {
	store, err := NewPostgresStore(nil)

	assert.Error(t, err)
	assert.Nil(t, store)
}
