package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/symptom-intake-server/internal/domain"
)

// PostgresStore implements domain.CorpusStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing connection. The schema is expected to
// exist already (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL opens a connection from a database URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewPostgresStore(db)
}

// AddTrainingExample appends one example.
func (s *PostgresStore) AddTrainingExample(ctx context.Context, example domain.TrainingExample) error {
	symptoms, err := json.Marshal(example.Symptoms.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO training_examples (symptoms, disease) VALUES ($1, $2)",
		string(symptoms), example.Disease,
	)
	if err != nil {
		return fmt.Errorf("failed to insert training example: %w", err)
	}
	return nil
}

// ListTrainingExamples returns the full corpus in insertion order.
func (s *PostgresStore) ListTrainingExamples(ctx context.Context) ([]domain.TrainingExample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symptoms, disease, created_at
		FROM training_examples
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training examples: %w", err)
	}
	defer rows.Close()

	var result []domain.TrainingExample
	for rows.Next() {
		var (
			example  domain.TrainingExample
			symptoms string
		)
		if err := rows.Scan(&example.ID, &symptoms, &example.Disease, &example.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(symptoms), &example.Symptoms); err != nil {
			return nil, fmt.Errorf("failed to decode symptoms: %w", err)
		}
		result = append(result, example)
	}
	return result, rows.Err()
}

// ClearTrainingExamples removes the entire corpus.
func (s *PostgresStore) ClearTrainingExamples(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM training_examples")
	return err
}

// CountTrainingExamples returns the corpus size.
func (s *PostgresStore) CountTrainingExamples(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM training_examples").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ domain.CorpusStore = (*PostgresStore)(nil)
var _ domain.CorpusStore = (*SQLiteStore)(nil)
