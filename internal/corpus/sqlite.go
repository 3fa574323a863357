// Package corpus stores the training examples the classification engine
// learns from. The engine only reads it; the HTTP layer appends, clears and
// lists. SQLite backs standalone deployments, PostgreSQL shared ones.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/symptom-intake-server/internal/domain"
)

// SQLiteStore implements domain.CorpusStore using an embedded SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database file in WAL mode. The
// returned connection may back both the corpus store and the intake
// repository.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers unblocked during corpus appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens (or creates) the database file and its schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStoreWithDB wraps an existing connection, creating the schema if
// missing. Useful when the intake repository shares the same file.
func NewSQLiteStoreWithDB(db *sql.DB) (*SQLiteStore, error) {
	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS training_examples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symptoms TEXT NOT NULL,
		disease TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_training_disease ON training_examples(disease);
	`

	_, err := db.Exec(schema)
	return err
}

// AddTrainingExample appends one example; symptoms are stored normalized as
// a JSON array.
func (s *SQLiteStore) AddTrainingExample(ctx context.Context, example domain.TrainingExample) error {
	symptoms, err := json.Marshal(example.Symptoms.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO training_examples (symptoms, disease) VALUES (?, ?)",
		string(symptoms), example.Disease,
	)
	if err != nil {
		return fmt.Errorf("failed to insert training example: %w", err)
	}
	return nil
}

// ListTrainingExamples returns the full corpus in insertion order. The
// stable ordering keeps repeated training runs deterministic.
func (s *SQLiteStore) ListTrainingExamples(ctx context.Context) ([]domain.TrainingExample, error) {
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
func (s *SQLiteStore) ClearTrainingExamples(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM training_examples")
	return err
}

// CountTrainingExamples returns the corpus size.
func (s *SQLiteStore) CountTrainingExamples(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM training_examples").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
