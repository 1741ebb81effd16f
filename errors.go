package daybook

import (
	"github.com/tmarshall/daybook/internal/snapshot"
	"github.com/tmarshall/daybook/internal/store"
)

// Error kinds surfaced by the Engine. Callers discriminate with errors.Is,
// never by string matching.
var (
	// ErrNotFound: a get or partial update named a record id that does not
	// exist in its collection.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicateID: an insert collided with an existing id. Inserts never
	// silently overwrite; Put is the explicit upsert.
	ErrDuplicateID = store.ErrDuplicateID

	// ErrStorageUnavailable: the persistence backend failed. No retry
	// happens at this layer.
	ErrStorageUnavailable = store.ErrStorageUnavailable

	// ErrVersionTooNew: an import document declares a schema newer than
	// this code supports. Nothing was mutated.
	ErrVersionTooNew = snapshot.ErrVersionTooNew

	// ErrMalformedSnapshot: an import document failed structural
	// validation. Nothing was mutated.
	ErrMalformedSnapshot = snapshot.ErrMalformedSnapshot
)
