// Package sources contains the feed source adapters: each adapter turns one
// external content source into raw candidate items for the aggregator.
// Adapters never write to the store; identity and dedup belong to the
// aggregator.
package sources

import (
	"context"
	"time"

	"github.com/tmarshall/daybook/internal/model"
)

// Candidate is one raw item produced by a source adapter, before identity
// computation.
type Candidate struct {
	Title       string
	Body        string
	Link        string
	GUID        string
	PublishedAt *time.Time
	RawSourceID string
}

// Source is one configured content source. Fetch returns the current
// candidate items; an error means this source contributes nothing this
// cycle. Fetch must respect ctx cancellation.
type Source interface {
	Name() string
	Kind() model.FeedKind
	Fetch(ctx context.Context) ([]Candidate, error)
}
