package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/domain"
)

// PostgresIntakeRepository implements domain.IntakeRepository on a pgx
// connection pool. The schema is managed by migrations.
type PostgresIntakeRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPostgresIntakeRepository creates a repository over the given pool.
func NewPostgresIntakeRepository(db *pgxpool.Pool, logger *logrus.Logger) *PostgresIntakeRepository {
	return &PostgresIntakeRepository{db: db, log: logger}
}

// Create inserts a new intake record, assigning ID and timestamp.
func (r *PostgresIntakeRepository) Create(ctx context.Context, record *domain.IntakeRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now().UTC()

	symptoms, err := json.Marshal(record.Symptoms.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	query := `
		INSERT INTO intake_records (
			id, name, phone, admission_date, symptoms,
			disease, confidence, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
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
func (r *PostgresIntakeRepository) List(ctx context.Context) ([]*domain.IntakeRecord, error) {
	query := `
		SELECT id, name, phone, admission_date, symptoms,
			disease, confidence, status, created_at
		FROM intake_records
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing intake records: %w", err)
	}
	defer rows.Close()

	var result []*domain.IntakeRecord
	for rows.Next() {
		var (
			record   domain.IntakeRecord
			symptoms string
			status   string
		)
		err := rows.Scan(
			&record.ID, &record.Name, &record.Phone, &record.AdmissionDate,
			&symptoms, &record.Disease, &record.Confidence, &status,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning intake record: %w", err)
		}
		record.Status = domain.RecordStatus(status)
		if err := json.Unmarshal([]byte(symptoms), &record.Symptoms); err != nil {
			return nil, fmt.Errorf("invalid symptoms payload: %w", err)
		}
		result = append(result, &record)
	}
	return result, rows.Err()
}

// Delete removes a record; a missing ID yields domain.ErrNotFound.
func (r *PostgresIntakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM intake_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting intake record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("intake record %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("record_id", id).Info("Intake record deleted")
	return nil
}

// Count returns the number of stored records.
func (r *PostgresIntakeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM intake_records").Scan(&count)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("counting intake records: %w", err)
	}
	return count, nil
}

var _ domain.IntakeRepository = (*PostgresIntakeRepository)(nil)
