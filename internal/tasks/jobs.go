// Package tasks implements the scheduled maintenance jobs that mutate
// personal records: due-date rollover and retention-based purge. Both are
// idempotent read-modify-write passes over one collection.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/tmarshall/daybook/internal/model"
	"github.com/tmarshall/daybook/internal/store"
)

// RolloverChange records one task whose due date was moved forward.
type RolloverChange struct {
	ID      string
	DueDate time.Time
}

// Jobs runs maintenance over the personal collection. The clock is
// injectable so date boundaries can be pinned in tests.
type Jobs struct {
	personal store.Collection[model.PersonalItem]
	now      func() time.Time
}

func NewJobs(personal store.Collection[model.PersonalItem], now func() time.Time) *Jobs {
	if now == nil {
		now = time.Now
	}
	return &Jobs{personal: personal, now: now}
}

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Rollover moves every incomplete task due strictly before the start of the
// current local day forward to today. Returns one change per rewritten
// task, so callers can reflect the moves without re-reading the collection.
// Running it again with no intervening writes changes nothing.
func (j *Jobs) Rollover(ctx context.Context) ([]RolloverChange, error) {
	items, err := j.personal.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}

	today := startOfDay(j.now())
	var changes []RolloverChange
	for _, item := range items {
		if item.Kind != model.KindTask || item.IsCompleted || item.DueDate == nil {
			continue
		}
		if !item.DueDate.Before(today) {
			continue
		}
		due := today
		item.DueDate = &due
		if err := j.personal.Put(ctx, item); err != nil {
			return changes, fmt.Errorf("rollover task %s: %w", item.ID, err)
		}
		changes = append(changes, RolloverChange{ID: item.ID, DueDate: due})
	}
	return changes, nil
}

// PurgeCompleted deletes completed tasks whose time since completion
// exceeds their retention window. A task exactly at the boundary is kept;
// one unit past it is purged. Returns the deleted ids.
func (j *Jobs) PurgeCompleted(ctx context.Context) ([]string, error) {
	items, err := j.personal.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("purge: %w", err)
	}

	now := j.now()
	var deleted []string
	for _, item := range items {
		if item.Kind != model.KindTask || !item.IsCompleted {
			continue
		}
		if item.RetentionDays <= 0 || item.LastCompletedAt == nil {
			continue
		}
		window := time.Duration(item.RetentionDays) * 24 * time.Hour
		if now.Sub(*item.LastCompletedAt) <= window {
			continue
		}
		if err := j.personal.Delete(ctx, item.ID); err != nil {
			return deleted, fmt.Errorf("purge task %s: %w", item.ID, err)
		}
		deleted = append(deleted, item.ID)
	}
	return deleted, nil
}
