// Package store implements daybook's persistent record store: named
// collections of JSON records keyed by an opaque string id, layered over a
// pluggable durable backend.
package store

import (
	"context"
	"sync"
)

// Store serializes all mutating operations over a Backend and runs seed
// functions on first read of an empty collection. Reads go straight to the
// backend; the backend provides per-record consistency.
//
// The runtime model assumes a single logical writer. The lock exists so
// that compound operations (seed, read-modify-write updates, whole-store
// restore) never interleave with another mutation.
type Store struct {
	backend Backend

	mu    sync.Mutex
	seeds map[string]func() []Record
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		seeds:   make(map[string]func() []Record),
	}
}

// Open opens a SQLite-backed store at dbPath.
func Open(dbPath string) (*Store, error) {
	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		return nil, err
	}
	return New(backend), nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// RegisterSeed installs the default record set for a collection. The seed
// runs at most once, triggered by the first GetAll that finds the
// collection empty. Seeding a non-empty collection is a no-op.
func (s *Store) RegisterSeed(collection string, seed func() []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds[collection] = seed
}

// GetAll returns every record in the collection, order unspecified.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Record, error) {
	s.mu.Lock()
	seed, ok := s.seeds[collection]
	s.mu.Unlock()
	if ok {
		if err := s.seedCollection(ctx, collection, seed); err != nil {
			return nil, err
		}
	}
	return s.backend.GetAll(ctx, collection)
}

func (s *Store) seedCollection(ctx context.Context, collection string, seed func() []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock: another caller may have seeded already.
	if _, ok := s.seeds[collection]; !ok {
		return nil
	}
	if _, err := s.backend.SeedIfEmpty(ctx, collection, seed()); err != nil {
		return err
	}
	delete(s.seeds, collection)
	return nil
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (*Record, error) {
	return s.backend.Get(ctx, collection, id)
}

// Put inserts or replaces the record by id. Idempotent.
func (s *Store) Put(ctx context.Context, collection string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Put(ctx, collection, rec)
}

// Insert adds a new record and fails with ErrDuplicateID when the id is
// already taken. The store never silently overwrites on insert.
func (s *Store) Insert(ctx context.Context, collection string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Insert(ctx, collection, rec)
}

// PutAll inserts or replaces a batch of records in one backend operation.
func (s *Store) PutAll(ctx context.Context, collection string, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.PutAll(ctx, collection, recs)
}

// Update applies fn to the stored record and writes the result back, all
// under the store lock. Returns ErrNotFound when the record is absent.
func (s *Store) Update(ctx context.Context, collection, id string, fn func(Record) (Record, error)) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	updated, err := fn(*rec)
	if err != nil {
		return nil, err
	}
	updated.ID = rec.ID // id is immutable across updates
	if err := s.backend.Put(ctx, collection, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Delete(ctx, collection, id)
}

// DeleteAndReturn removes the record and returns the stored copy, so a
// caller that wants undo can later replay it verbatim with Put. Returns
// ErrNotFound when the record is absent. The read and the delete happen
// under one lock acquisition.
func (s *Store) DeleteAndReturn(ctx context.Context, collection, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Delete(ctx, collection, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// Clear removes all records in the collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Clear(ctx, collection)
}

// ReplaceAll atomically wipes the named collections and loads data. Used by
// snapshot restore; holds the store lock for the whole swap so no other
// operation can observe the intermediate wiped state.
func (s *Store) ReplaceAll(ctx context.Context, collections []string, data map[string][]Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.ReplaceAll(ctx, collections, data); err != nil {
		return err
	}
	// Restored collections are authoritative; pending seeds for them no
	// longer apply, even when the snapshot held an empty collection.
	for _, collection := range collections {
		delete(s.seeds, collection)
	}
	return nil
}
