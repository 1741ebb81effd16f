// Package feed merges candidate items from heterogeneous source adapters
// into the feed collection without ever duplicating an item that is
// already present.
package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tmarshall/daybook/internal/model"
	"github.com/tmarshall/daybook/internal/sources"
	"github.com/tmarshall/daybook/internal/store"
)

// SourceError reports the failure of a single source adapter during a
// refresh. It never aborts the pass.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	New    []model.FeedItem
	Errors []*SourceError
}

// Aggregator runs refresh cycles over a fixed set of sources.
type Aggregator struct {
	items   store.Collection[model.FeedItem]
	sources []sources.Source
	now     func() time.Time
}

func NewAggregator(items store.Collection[model.FeedItem], srcs []sources.Source, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{items: items, sources: srcs, now: now}
}

// Refresh pulls candidates from every source, computes each candidate's
// identity, drops ids already present (including ids staged earlier in the
// same pass), and commits the remainder.
//
// Commit granularity is per adapter: each source's new items are written
// before the next source is consulted, so cancelling mid-pass keeps the
// items from sources that already completed. A failing source contributes
// nothing for the cycle and is reported in the result; it does not roll
// back other sources.
func (a *Aggregator) Refresh(ctx context.Context) (*RefreshResult, error) {
	existing, err := a.items.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed collection: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[item.ID] = true
	}

	result := &RefreshResult{}
	for _, src := range a.sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		candidates, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("daybook: source %s failed: %v", src.Name(), err)
			result.Errors = append(result.Errors, &SourceError{Source: src.Name(), Err: err})
			continue
		}

		var staged []model.FeedItem
		for _, c := range candidates {
			item := a.buildItem(src, c)
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			staged = append(staged, item)
		}
		if len(staged) == 0 {
			continue
		}

		// Commit outside the refresh's cancellation scope: items staged
		// before a cancellation point still land.
		if err := a.items.PutAll(context.WithoutCancel(ctx), staged); err != nil {
			return result, fmt.Errorf("commit items from %s: %w", src.Name(), err)
		}
		result.New = append(result.New, staged...)
	}
	return result, nil
}

func (a *Aggregator) buildItem(src sources.Source, c sources.Candidate) model.FeedItem {
	item := model.FeedItem{
		Kind:      src.Kind(),
		Title:     c.Title,
		Body:      c.Body,
		Link:      c.Link,
		Source:    src.Name(),
		CreatedAt: a.now(),
	}
	if c.PublishedAt != nil {
		item.CreatedAt = *c.PublishedAt
	}

	switch src.Kind() {
	case model.KindGenerated, model.KindCuratedQuote:
		// At most one post per source per calendar day, regardless of
		// content. The id presence check is the only daily gate.
		item.ID = DailyID(src.Name(), a.now())
	default:
		item.ID = ItemID(src.Name(), c)
	}
	return item
}
