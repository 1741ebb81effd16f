package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is an in-memory Backend used in tests and as a reference
// implementation of the Backend contract.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string]Record
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]Record)}
}

func (b *MemoryBackend) collection(name string) map[string]Record {
	col, ok := b.data[name]
	if !ok {
		col = make(map[string]Record)
		b.data[name] = col
	}
	return col
}

func (b *MemoryBackend) GetAll(_ context.Context, collection string) ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var recs []Record
	for _, rec := range b.collection(collection) {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (b *MemoryBackend) Get(_ context.Context, collection, id string) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.collection(collection)[id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	return &rec, nil
}

func (b *MemoryBackend) Put(_ context.Context, collection string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collection(collection)[rec.ID] = rec
	return nil
}

func (b *MemoryBackend) Insert(_ context.Context, collection string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	col := b.collection(collection)
	if _, exists := col[rec.ID]; exists {
		return fmt.Errorf("insert %s/%s: %w", collection, rec.ID, ErrDuplicateID)
	}
	col[rec.ID] = rec
	return nil
}

func (b *MemoryBackend) PutAll(_ context.Context, collection string, recs []Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	col := b.collection(collection)
	for _, rec := range recs {
		col[rec.ID] = rec
	}
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, collection, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.collection(collection), id)
	return nil
}

func (b *MemoryBackend) Clear(_ context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[collection] = make(map[string]Record)
	return nil
}

func (b *MemoryBackend) SeedIfEmpty(_ context.Context, collection string, recs []Record) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	col := b.collection(collection)
	if len(col) > 0 {
		return false, nil
	}
	for _, rec := range recs {
		col[rec.ID] = rec
	}
	return true, nil
}

func (b *MemoryBackend) ReplaceAll(_ context.Context, collections []string, data map[string][]Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, collection := range collections {
		col := make(map[string]Record)
		for _, rec := range data[collection] {
			col[rec.ID] = rec
		}
		b.data[collection] = col
	}
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
