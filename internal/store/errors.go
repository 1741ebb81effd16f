package store

import "errors"

var (
	// ErrNotFound is returned by Get and Update when no record with the
	// requested id exists in the collection.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned by Insert when a record with the same id
	// already exists. Put replaces instead.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrStorageUnavailable wraps failures of the underlying persistence
	// backend. Callers decide whether to retry; the store never does.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
