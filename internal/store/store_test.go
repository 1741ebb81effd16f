package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func rec(id, body string, at time.Time) Record {
	return Record{ID: id, CreatedAt: at, Data: []byte(`{"id":"` + id + `","body":"` + body + `"}`)}
}

func TestPutGetDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := st.Put(ctx, "things", rec("a", "one", now)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := st.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("Get returned id %q, want a", got.ID)
	}

	if _, err := st.Get(ctx, "things", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get of missing id: got %v, want ErrNotFound", err)
	}

	if err := st.Delete(ctx, "things", "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.Get(ctx, "things", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}

	// Deleting an absent record always succeeds.
	if err := st.Delete(ctx, "things", "a"); err != nil {
		t.Errorf("Delete of absent id failed: %v", err)
	}
}

func TestPutReplacesInsertDoesNot(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := st.Insert(ctx, "things", rec("a", "one", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := st.Insert(ctx, "things", rec("a", "two", now)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Insert: got %v, want ErrDuplicateID", err)
	}

	// The colliding insert must not have replaced the record.
	got, err := st.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Data) != `{"id":"a","body":"one"}` {
		t.Errorf("Insert overwrote record: %s", got.Data)
	}

	if err := st.Put(ctx, "things", rec("a", "two", now)); err != nil {
		t.Fatalf("Put replace failed: %v", err)
	}
	got, _ = st.Get(ctx, "things", "a")
	if string(got.Data) != `{"id":"a","body":"two"}` {
		t.Errorf("Put did not replace record: %s", got.Data)
	}
}

func TestSeedOnFirstGetAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	seeded := 0
	st.RegisterSeed("things", func() []Record {
		seeded++
		return []Record{rec("default-1", "seed", now), rec("default-2", "seed", now)}
	})

	recs, err := st.GetAll(ctx, "things")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 seeded records, got %d", len(recs))
	}
	if seeded != 1 {
		t.Errorf("seed func ran %d times, want 1", seeded)
	}

	// Repeated reads never reseed or change contents.
	if err := st.Delete(ctx, "things", "default-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		recs, err = st.GetAll(ctx, "things")
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("GetAll changed collection contents: %d records", len(recs))
		}
	}
	if seeded != 1 {
		t.Errorf("seed func ran %d times after repeated reads, want 1", seeded)
	}
}

func TestSeedSkipsNonEmptyCollection(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := st.Put(ctx, "things", rec("existing", "mine", now)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	st.RegisterSeed("things", func() []Record {
		return []Record{rec("default-1", "seed", now)}
	})

	recs, err := st.GetAll(ctx, "things")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "existing" {
		t.Fatalf("seed overwrote a non-empty collection: %+v", recs)
	}
}

func TestDeleteAndReturnRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	orig := rec("a", "keep me", now)
	if err := st.Put(ctx, "things", orig); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	taken, err := st.DeleteAndReturn(ctx, "things", "a")
	if err != nil {
		t.Fatalf("DeleteAndReturn failed: %v", err)
	}
	if string(taken.Data) != string(orig.Data) {
		t.Errorf("returned copy differs: %s", taken.Data)
	}
	if _, err := st.Get(ctx, "things", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("record still present after DeleteAndReturn")
	}

	// Undo: replay the returned copy verbatim.
	if err := st.Put(ctx, "things", *taken); err != nil {
		t.Fatalf("undo Put failed: %v", err)
	}
	got, err := st.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("Get after undo failed: %v", err)
	}
	if string(got.Data) != string(orig.Data) {
		t.Errorf("undo restored different data: %s", got.Data)
	}

	if _, err := st.DeleteAndReturn(ctx, "things", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAndReturn of missing id: got %v, want ErrNotFound", err)
	}
}

func TestReplaceAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	st.Put(ctx, "a", rec("old-1", "x", now))
	st.Put(ctx, "b", rec("old-2", "x", now))

	data := map[string][]Record{
		"a": {rec("new-1", "y", now), rec("new-2", "y", now)},
		// "b" is named but absent from data: it must end up empty.
	}
	if err := st.ReplaceAll(ctx, []string{"a", "b"}, data); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	recsA, _ := st.GetAll(ctx, "a")
	if len(recsA) != 2 {
		t.Errorf("collection a has %d records, want 2", len(recsA))
	}
	recsB, _ := st.GetAll(ctx, "b")
	if len(recsB) != 0 {
		t.Errorf("collection b has %d records, want 0", len(recsB))
	}
}

func TestMemoryBackendContract(t *testing.T) {
	// The in-memory backend must honor the same contract the SQLite
	// backend does for the operations the store composes.
	ctx := context.Background()
	b := NewMemoryBackend()
	now := time.Now()

	if err := b.Insert(ctx, "c", rec("a", "one", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := b.Insert(ctx, "c", rec("a", "two", now)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate Insert: got %v, want ErrDuplicateID", err)
	}
	applied, err := b.SeedIfEmpty(ctx, "c", []Record{rec("s", "seed", now)})
	if err != nil || applied {
		t.Errorf("SeedIfEmpty on non-empty: applied=%v err=%v", applied, err)
	}
	applied, err = b.SeedIfEmpty(ctx, "empty", []Record{rec("s", "seed", now)})
	if err != nil || !applied {
		t.Errorf("SeedIfEmpty on empty: applied=%v err=%v", applied, err)
	}
	if _, err := b.Get(ctx, "c", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
}
