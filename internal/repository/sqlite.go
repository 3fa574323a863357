// Package repository persists health-intake records. The engine never
// touches these; they belong to the intake workflow that consumes its
// predictions.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/symptom-intake-server/internal/domain"
)

// SQLiteIntakeRepository implements domain.IntakeRepository on SQLite.
type SQLiteIntakeRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewSQLiteIntakeRepository wraps a connection, creating the schema if
// missing. The connection may be shared with the corpus store.
func NewSQLiteIntakeRepository(db *sql.DB, logger *logrus.Logger) (*SQLiteIntakeRepository, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS intake_records (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		admission_date TEXT NOT NULL,
		symptoms TEXT NOT NULL,
		disease TEXT NOT NULL,
		confidence REAL NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_intake_created_at ON intake_records(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteIntakeRepository{db: db, log: logger}, nil
}

// Create inserts a new intake record, assigning ID and timestamp.
func (r *SQLiteIntakeRepository) Create(ctx context.Context, record *domain.IntakeRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now().UTC()

	symptoms, err := json.Marshal(record.Symptoms.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO intake_records (
			id, name, phone, admission_date, symptoms,
			disease, confidence, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID.String(),
		record.Name,
		record.Phone,
		record.AdmissionDate,
		string(symptoms),
		record.Disease,
		record.Confidence,
		string(record.Status),
		record.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"record_id": record.ID,
			"error":     err,
		}).Error("Failed to create intake record")
		return fmt.Errorf("creating intake record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"record_id": record.ID,
		"disease":   record.Disease,
		"status":    record.Status,
	}).Info("Intake record created")
	return nil
}

// List returns all records, newest first.
func (r *SQLiteIntakeRepository) List(ctx context.Context) ([]*domain.IntakeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, admission_date, symptoms,
			disease, confidence, status, created_at
		FROM intake_records
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing intake records: %w", err)
	}
	defer rows.Close()

	var result []*domain.IntakeRecord
	for rows.Next() {
		record, err := scanIntakeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning intake record: %w", err)
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// Delete removes a record; a missing ID yields domain.ErrNotFound.
func (r *SQLiteIntakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM intake_records WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("deleting intake record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("intake record %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("record_id", id).Info("Intake record deleted")
	return nil
}

// Count returns the number of stored records.
func (r *SQLiteIntakeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM intake_records").Scan(&count)
	return count, err
}

// scanner is satisfied by both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIntakeRecord(s scanner) (*domain.IntakeRecord, error) {
	var (
		record   domain.IntakeRecord
		id       string
		symptoms string
		status   string
	)
	err := s.Scan(
		&id, &record.Name, &record.Phone, &record.AdmissionDate,
		&symptoms, &record.Disease, &record.Confidence, &status,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	record.ID = parsed
	record.Status = domain.RecordStatus(status)

	if err := json.Unmarshal([]byte(symptoms), &record.Symptoms); err != nil {
		return nil, fmt.Errorf("invalid symptoms payload: %w", err)
	}
	return &record, nil
}

var _ domain.IntakeRepository = (*SQLiteIntakeRepository)(nil)
