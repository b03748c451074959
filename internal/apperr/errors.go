package apperr

import "errors"

var (
	// ErrNotFound is the soft-fail result for single-record lookups.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks failures of the underlying storage engine
	// (I/O errors, corruption, quota). Always wrapped with context.
	ErrStorage = errors.New("storage failure")
)
