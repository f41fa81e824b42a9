package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are the only error kinds
// that cross the core boundary. Callers match with errors.Is, never on text.
var (
	// ErrNotFound indicates a requested document, collection or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateDocument indicates the content hash already exists in the
	// target collection. Detected before any mutation; never retried.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrIntegrityMismatch indicates a chunk's recomputed hash disagrees with
	// the hash declared for it at split time. Fatal: the indexing call aborts
	// and rolls back, since it points at a non-deterministic splitter or
	// storage corruption.
	ErrIntegrityMismatch = errors.New("chunk hash mismatch")

	// ErrUnsupportedFileType indicates no text extractor handles the file type.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileNotFound indicates the source content is unavailable.
	ErrFileNotFound = errors.New("file not found")

	// ErrStoreUnavailable indicates a transient backend failure in either
	// store. Safe to retry the whole indexing call: duplicate detection makes
	// retries idempotent from the caller's perspective.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// InternalError is the catch-all for unexpected failures. It carries an
// opaque correlation ID for operator-side log correlation and never leaks
// internal detail to the caller.
type InternalError struct {
	// CorrelationID ties the caller-visible error to operator logs.
	CorrelationID string

	// Err is the underlying cause, reachable via errors.Unwrap.
	Err error
}

// NewInternalError wraps err with a fresh correlation ID.
func NewInternalError(err error) *InternalError {
	return &InternalError{
		CorrelationID: uuid.New().String(),
		Err:           err,
	}
}

// Error reports only the correlation ID, not the underlying cause.
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error (id=%s)", e.CorrelationID)
}

// Unwrap exposes the cause for errors.Is/As matching in operator tooling.
func (e *InternalError) Unwrap() error {
	return e.Err
}
