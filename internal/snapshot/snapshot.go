// Package snapshot serializes the whole store plus user settings into one
// versioned document and restores it atomically.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tmarshall/daybook/internal/config"
	"github.com/tmarshall/daybook/internal/store"
)

// SchemaVersion is the snapshot format written by this code. Documents with
// an equal or lower version import cleanly; newer documents are rejected
// before any mutation.
const SchemaVersion = 2

var (
	// ErrVersionTooNew means the document was produced by newer code.
	ErrVersionTooNew = errors.New("snapshot schema version too new")

	// ErrMalformedSnapshot means the document failed structural validation.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// Document is the wire format for a full export.
type Document struct {
	SchemaVersion int                          `json:"schemaVersion"`
	ExportedAt    time.Time                    `json:"exportedAt"`
	Settings      *config.Settings             `json:"settings"`
	Collections   map[string][]json.RawMessage `json:"collections"`
}

// Manager exports and restores the managed collections through the store.
type Manager struct {
	store       *store.Store
	collections []string
	now         func() time.Time
}

func NewManager(st *store.Store, collections []string, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: st, collections: collections, now: now}
}

// Export reads every managed collection and the current settings and
// returns the serialized document.
func (m *Manager) Export(ctx context.Context, settings *config.Settings) ([]byte, error) {
	doc := Document{
		SchemaVersion: SchemaVersion,
		ExportedAt:    m.now().UTC(),
		Settings:      settings,
		Collections:   make(map[string][]json.RawMessage, len(m.collections)),
	}
	for _, collection := range m.collections {
		recs, err := m.store.GetAll(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", collection, err)
		}
		raws := make([]json.RawMessage, 0, len(recs))
		for _, rec := range recs {
			raws = append(raws, json.RawMessage(rec.Data))
		}
		doc.Collections[collection] = raws
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// recordEnvelope is the minimal shape every snapshot record must carry.
type recordEnvelope struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Import parses and validates data, then replaces every managed collection
// with the document's contents in one atomic step. Nothing is mutated when
// validation fails: the whole document is decoded and staged first, and the
// wipe+load runs inside a single store transaction. Returns the restored
// settings so the caller can persist them.
func (m *Manager) Import(ctx context.Context, data []byte) (*config.Settings, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.SchemaVersion <= 0 {
		return nil, fmt.Errorf("%w: missing schemaVersion", ErrMalformedSnapshot)
	}
	if doc.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: document version %d, supported up to %d",
			ErrVersionTooNew, doc.SchemaVersion, SchemaVersion)
	}
	if doc.Collections == nil {
		return nil, fmt.Errorf("%w: missing collections", ErrMalformedSnapshot)
	}

	// Stage everything before touching the store.
	staged := make(map[string][]store.Record, len(doc.Collections))
	for collection, raws := range doc.Collections {
		recs := make([]store.Record, 0, len(raws))
		ids := make(map[string]bool, len(raws))
		for i, raw := range raws {
			var env recordEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedSnapshot, collection, i, err)
			}
			if env.ID == "" {
				return nil, fmt.Errorf("%w: %s[%d]: missing id", ErrMalformedSnapshot, collection, i)
			}
			if ids[env.ID] {
				return nil, fmt.Errorf("%w: %s: duplicate id %s", ErrMalformedSnapshot, collection, env.ID)
			}
			ids[env.ID] = true
			if env.CreatedAt.IsZero() {
				// Additive default for older documents without timestamps.
				// The payload is rewritten too, so decoded reads see the
				// same value as the record envelope.
				env.CreatedAt = doc.ExportedAt
				fixed, err := withCreatedAt(raw, env.CreatedAt)
				if err != nil {
					return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedSnapshot, collection, i, err)
				}
				raw = fixed
			}
			recs = append(recs, store.Record{ID: env.ID, CreatedAt: env.CreatedAt, Data: raw})
		}
		staged[collection] = recs
	}

	if err := m.store.ReplaceAll(ctx, m.collections, staged); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return doc.Settings, nil
}

// withCreatedAt sets the createdAt key on a raw record payload.
func withCreatedAt(raw json.RawMessage, at time.Time) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	ts, err := json.Marshal(at)
	if err != nil {
		return nil, err
	}
	fields["createdAt"] = ts
	return json.Marshal(fields)
}

// Wipe clears every managed collection. When resetSettings is true the
// returned settings are the defaults; otherwise nil, meaning keep current.
func (m *Manager) Wipe(ctx context.Context, resetSettings bool) (*config.Settings, error) {
	empty := make(map[string][]store.Record, len(m.collections))
	if err := m.store.ReplaceAll(ctx, m.collections, empty); err != nil {
		return nil, fmt.Errorf("wipe: %w", err)
	}
	if resetSettings {
		return config.Default(), nil
	}
	return nil, nil
}
