package store

import (
	"context"
	"time"
)

// Record is the raw persisted form of one entity. Data holds the full JSON
// document; ID and CreatedAt are duplicated out of it so backends can index
// without understanding the payload.
type Record struct {
	ID        string
	CreatedAt time.Time
	Data      []byte
}

// Backend is the durable key-value layer the store is built on. Any embedded
// database, file-backed store, or in-memory map with a durability hook can
// satisfy it. Collections are independent namespaces; record ids are unique
// within a collection.
//
// SeedIfEmpty and ReplaceAll exist so that backends which support
// transactions can make "insert defaults on first use" and "wipe then
// restore everything" atomic instead of check-then-write sequences.
type Backend interface {
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (*Record, error)
	Put(ctx context.Context, collection string, rec Record) error
	Insert(ctx context.Context, collection string, rec Record) error
	PutAll(ctx context.Context, collection string, recs []Record) error
	Delete(ctx context.Context, collection, id string) error
	Clear(ctx context.Context, collection string) error

	// SeedIfEmpty writes recs only when the collection holds no records.
	// Returns true when the seed was applied.
	SeedIfEmpty(ctx context.Context, collection string, recs []Record) (bool, error)

	// ReplaceAll clears every listed collection and loads the given records
	// in one atomic step. Collections absent from data are still cleared
	// when named in collections.
	ReplaceAll(ctx context.Context, collections []string, data map[string][]Record) error

	Close() error
}
