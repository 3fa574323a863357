package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus flags whether an intake record needs staff follow-up.
type RecordStatus string

const (
	StatusGood              RecordStatus = "Good"
	StatusRequiresAttention RecordStatus = "Requires Attention"
)

// StatusFor derives the record status from a prediction: an unmatched
// symptom set is considered fine, anything with a suggested condition is
// flagged for attention.
func StatusFor(p Prediction) RecordStatus {
	if p.Disease == LabelUnknown {
		return StatusGood
	}
	return StatusRequiresAttention
}

// IntakeRecord is one person's health-intake entry with the prediction
// attached at creation time.
type IntakeRecord struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	AdmissionDate string       `json:"admission_date"`
	Symptoms      SymptomSet   `json:"symptoms"`
	Disease       string       `json:"disease"`
	Confidence    float64      `json:"confidence"`
	Status        RecordStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// DataExport is the versioned JSON envelope for exporting intake records
// together with the training corpus.
type DataExport struct {
	Version      string            `json:"version"`
	ExportedAt   time.Time         `json:"exported_at"`
	RecordCount  int               `json:"record_count"`
	ExampleCount int               `json:"example_count"`
	Records      []*IntakeRecord   `json:"records"`
	TrainingData []TrainingExample `json:"training_data"`
}

// ExportVersion tags DataExport payloads so incompatible imports fail
// cleanly instead of silently misreading fields.
const ExportVersion = "1.0"
