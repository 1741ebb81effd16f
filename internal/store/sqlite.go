package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores records in a single-file SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if necessary) the database at dbPath and
// initializes the schema.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w: %w", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w: %w", ErrStorageUnavailable, err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) GetAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT id, created_at, data FROM records WHERE collection = ?",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var data string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &data); err != nil {
			return nil, fmt.Errorf("scan record: %w: %w", ErrStorageUnavailable, err)
		}
		r.Data = []byte(data)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (b *SQLiteBackend) Get(ctx context.Context, collection, id string) (*Record, error) {
	var r Record
	var data string
	err := b.db.QueryRowContext(ctx,
		"SELECT id, created_at, data FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&r.ID, &r.CreatedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w: %w", collection, id, ErrStorageUnavailable, err)
	}
	r.Data = []byte(data)
	return &r, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, collection string, rec Record) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, created_at, data)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET
		   created_at = excluded.created_at,
		   data = excluded.data`,
		collection, rec.ID, rec.CreatedAt, string(rec.Data),
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
	}
	return nil
}

func (b *SQLiteBackend) Insert(ctx context.Context, collection string, rec Record) error {
	result, err := b.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, created_at, data)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO NOTHING`,
		collection, rec.ID, rec.CreatedAt, string(rec.Data),
	)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("insert %s/%s: %w", collection, rec.ID, ErrDuplicateID)
	}
	return nil
}

func (b *SQLiteBackend) PutAll(ctx context.Context, collection string, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put all %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (collection, id, created_at, data)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(collection, id) DO UPDATE SET
			   created_at = excluded.created_at,
			   data = excluded.data`,
			collection, rec.ID, rec.CreatedAt, string(rec.Data),
		); err != nil {
			return fmt.Errorf("put all %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put all %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := b.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w: %w", collection, id, ErrStorageUnavailable, err)
	}
	return nil
}

func (b *SQLiteBackend) Clear(ctx context.Context, collection string) error {
	_, err := b.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ?",
		collection,
	)
	if err != nil {
		return fmt.Errorf("clear %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	return nil
}

// SeedIfEmpty inserts recs only when the collection is empty. The emptiness
// check and the writes happen in one immediate transaction so a concurrent
// writer cannot interleave between check and write.
func (b *SQLiteBackend) SeedIfEmpty(ctx context.Context, collection string, recs []Record) (bool, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("seed %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", collection,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("seed %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	if count > 0 {
		return false, nil
	}

	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO records (collection, id, created_at, data) VALUES (?, ?, ?, ?)",
			collection, rec.ID, rec.CreatedAt, string(rec.Data),
		); err != nil {
			return false, fmt.Errorf("seed %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("seed %s: %w: %w", collection, ErrStorageUnavailable, err)
	}
	return true, nil
}

// ReplaceAll wipes the named collections and loads data inside a single
// transaction. Either the whole restore lands or none of it does.
func (b *SQLiteBackend) ReplaceAll(ctx context.Context, collections []string, data map[string][]Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace all: %w: %w", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	for _, collection := range collections {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM records WHERE collection = ?", collection,
		); err != nil {
			return fmt.Errorf("replace all: clear %s: %w: %w", collection, ErrStorageUnavailable, err)
		}
		for _, rec := range data[collection] {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO records (collection, id, created_at, data) VALUES (?, ?, ?, ?)",
				collection, rec.ID, rec.CreatedAt, string(rec.Data),
			); err != nil {
				return fmt.Errorf("replace all: load %s/%s: %w: %w", collection, rec.ID, ErrStorageUnavailable, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace all: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
