package domain

import (
	"context"

	"github.com/google/uuid"
)

// CorpusSource supplies the full set of training examples currently known
// to the system. The engine performs a full read on every train call; there
// is no incremental API.
type CorpusSource interface {
	ListTrainingExamples(ctx context.Context) ([]TrainingExample, error)
}

// CorpusStore is the mutable training-data store behind the CorpusSource.
type CorpusStore interface {
	CorpusSource
	AddTrainingExample(ctx context.Context, example TrainingExample) error
	ClearTrainingExamples(ctx context.Context) error
	CountTrainingExamples(ctx context.Context) (int64, error)
}

// BlobStore persists opaque model blobs under caller-supplied keys.
// Retrieve returns ErrBlobNotFound (possibly wrapped) when no blob exists.
type BlobStore interface {
	Store(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
}

// IntakeRepository persists health-intake records.
type IntakeRepository interface {
	Create(ctx context.Context, record *IntakeRecord) error
	List(ctx context.Context) ([]*IntakeRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// Classifier is the engine surface consumed by the HTTP layer.
// Predict never fails; it always degrades to a defined answer.
type Classifier interface {
	Predict(symptoms SymptomSet) Prediction
	Train(ctx context.Context) error
	TrainWith(ctx context.Context, corpus []TrainingExample) error
	Info() EngineInfo
	SaveModel(ctx context.Context) error
	LoadModel(ctx context.Context) error
}
