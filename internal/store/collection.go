package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Keyed is implemented by every domain type persisted through a Collection.
type Keyed interface {
	RecordID() string
	RecordCreatedAt() time.Time
}

// Collection is a typed view over one named collection. It handles the JSON
// encoding between domain values and raw Records.
type Collection[T Keyed] struct {
	store *Store
	name  string
}

func NewCollection[T Keyed](s *Store, name string) Collection[T] {
	return Collection[T]{store: s, name: name}
}

func (c Collection[T]) Name() string { return c.name }

// RegisterSeed installs typed default records for this collection.
func (c Collection[T]) RegisterSeed(seed func() []T) {
	c.store.RegisterSeed(c.name, func() []Record {
		var recs []Record
		for _, v := range seed() {
			rec, err := encode(v)
			if err != nil {
				continue
			}
			recs = append(recs, rec)
		}
		return recs
	})
}

func encode[T Keyed](v T) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode record %s: %w", v.RecordID(), err)
	}
	return Record{ID: v.RecordID(), CreatedAt: v.RecordCreatedAt(), Data: data}, nil
}

func decode[T Keyed](rec Record) (T, error) {
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return v, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	return v, nil
}

// All returns every record in the collection, newest first.
func (c Collection[T]) All(ctx context.Context) ([]T, error) {
	recs, err := c.store.GetAll(ctx, c.name)
	if err != nil {
		return nil, err
	}
	vs := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := decode[T](rec)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].RecordCreatedAt().After(vs[j].RecordCreatedAt())
	})
	return vs, nil
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	rec, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return zero, err
	}
	return decode[T](*rec)
}

func (c Collection[T]) Put(ctx context.Context, v T) error {
	rec, err := encode(v)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.name, rec)
}

func (c Collection[T]) Insert(ctx context.Context, v T) error {
	rec, err := encode(v)
	if err != nil {
		return err
	}
	return c.store.Insert(ctx, c.name, rec)
}

func (c Collection[T]) PutAll(ctx context.Context, vs []T) error {
	recs := make([]Record, 0, len(vs))
	for _, v := range vs {
		rec, err := encode(v)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	return c.store.PutAll(ctx, c.name, recs)
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// DeleteAndReturn removes the record and hands back the stored copy for
// undo via a later Put.
func (c Collection[T]) DeleteAndReturn(ctx context.Context, id string) (T, error) {
	var zero T
	rec, err := c.store.DeleteAndReturn(ctx, c.name, id)
	if err != nil {
		return zero, err
	}
	return decode[T](*rec)
}

func (c Collection[T]) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.name)
}

// Patch merges the given fields onto the stored record's JSON document and
// writes the result back. The id field cannot be changed. Returns
// ErrNotFound when the record does not exist.
func (c Collection[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var zero T
	rec, err := c.store.Update(ctx, c.name, id, func(rec Record) (Record, error) {
		var doc map[string]any
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			return Record{}, fmt.Errorf("patch %s/%s: %w", c.name, id, err)
		}
		for k, v := range fields {
			if k == "id" {
				continue
			}
			doc[k] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return Record{}, fmt.Errorf("patch %s/%s: %w", c.name, id, err)
		}
		rec.Data = data
		return rec, nil
	})
	if err != nil {
		return zero, err
	}
	return decode[T](*rec)
}
