package domain

import (
	"errors"
	"fmt"
)

// Recoverable training and lookup failures. The engine's predict path never
// returns an error; these surface only from train, persistence and record
// operations so callers can decide what to do.
var (
	// ErrEmptyCorpus means train() was invoked with zero examples. The
	// previously active model and engine state are left untouched.
	ErrEmptyCorpus = errors.New("training corpus is empty")

	// ErrModelUnavailable means no model has ever trained successfully.
	// Prediction silently routes to the fallback matcher instead of
	// surfacing this; only explicit save operations report it.
	ErrModelUnavailable = errors.New("no trained model available")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// PersistError wraps model store failures (missing blob, I/O error, version
// or format mismatch). Load failures are treated as "no model available"
// and are never fatal at startup.
type PersistError struct {
	Op  string // "save" or "load"
	Err error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("model persistence %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// NewPersistError wraps err as a PersistError for the given operation.
func NewPersistError(op string, err error) *PersistError {
	return &PersistError{Op: op, Err: err}
}

// Model blob validation failures.
var (
	// ErrBlobNotFound means no model blob exists under the requested key.
	ErrBlobNotFound = errors.New("model blob not found")

	// ErrEnvelopeMismatch means a stored blob carries an unexpected format
	// tag or version and must not be deserialized as a model.
	ErrEnvelopeMismatch = errors.New("model envelope format or version mismatch")
)
