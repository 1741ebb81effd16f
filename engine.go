package daybook

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tmarshall/daybook/internal/config"
	"github.com/tmarshall/daybook/internal/feed"
	"github.com/tmarshall/daybook/internal/model"
	"github.com/tmarshall/daybook/internal/snapshot"
	"github.com/tmarshall/daybook/internal/sources"
	"github.com/tmarshall/daybook/internal/store"
	"github.com/tmarshall/daybook/internal/tasks"
)

// Managed collection names. The snapshot manager wipes and restores exactly
// these.
const (
	feedCollection     = "feed"
	personalCollection = "personal"
)

var managedCollections = []string{feedCollection, personalCollection}

// Options configures a new Engine.
type Options struct {
	// DBPath is the SQLite database file.
	DBPath string

	// ConfigPath is the settings file. Imports and wipes that change
	// settings are saved back here when set.
	ConfigPath string

	// Settings overrides loading from ConfigPath when non-nil.
	Settings *Settings

	// HTTPClient is used by the network-backed sources. Defaults to a
	// client with a 30 second timeout.
	HTTPClient *http.Client

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine is daybook's public API: the record store, the feed aggregator,
// the maintenance jobs, and the snapshot manager behind one handle.
type Engine struct {
	store      *store.Store
	feedCol    store.Collection[model.FeedItem]
	personal   store.Collection[model.PersonalItem]
	agg        *feed.Aggregator
	jobs       *tasks.Jobs
	snap       *snapshot.Manager
	settings   *Settings
	configPath string
	now        func() time.Time
}

// NewEngine opens the database and wires up the engine from settings.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	settings := opts.Settings
	if settings == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &Engine{
		store:      st,
		feedCol:    store.NewCollection[model.FeedItem](st, feedCollection),
		personal:   store.NewCollection[model.PersonalItem](st, personalCollection),
		settings:   settings,
		configPath: opts.ConfigPath,
		now:        opts.Now,
	}
	e.feedCol.RegisterSeed(func() []model.FeedItem { return seedFeedItems(e.now()) })
	e.personal.RegisterSeed(func() []model.PersonalItem { return seedPersonalItems(e.now()) })

	e.agg = feed.NewAggregator(e.feedCol, buildSources(settings, opts.HTTPClient, e.now), e.now)
	e.jobs = tasks.NewJobs(e.personal, e.now)
	e.snap = snapshot.NewManager(st, managedCollections, e.now)
	return e, nil
}

// buildSources assembles the configured source adapters: one per syndicated
// feed, the curated quote source, the generated daily note, and one
// market-news lookup per watched symbol.
func buildSources(settings *Settings, client *http.Client, now func() time.Time) []sources.Source {
	var srcs []sources.Source
	for _, f := range settings.Feeds {
		srcs = append(srcs, sources.NewRSSSource(f.Name, f.URL, f.MaxItems, client))
	}
	if settings.Quotes.Enabled {
		srcs = append(srcs, sources.NewQuoteSource("quotes", now))
	}
	if settings.Generator.Enabled && settings.Generator.Model != "" {
		gen, err := sources.NewOllamaGenerator(
			settings.Generator.BaseURL, settings.Generator.Model, settings.Generator.Prompt)
		if err != nil {
			log.Printf("daybook: generated source disabled: %v", err)
		} else {
			srcs = append(srcs, sources.NewGeneratedSource("daily-note", gen))
		}
	}
	if settings.Market.BaseURL != "" {
		for _, symbol := range settings.Watchlist {
			srcs = append(srcs, sources.NewMarketNewsSource(symbol, settings.Market.BaseURL, client))
		}
	}
	return srcs
}

// Close releases the underlying database.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Settings returns the engine's current settings value.
func (e *Engine) Settings() *Settings {
	return e.settings
}

// Refresh runs one aggregator pass over all configured sources. Individual
// source failures are reported in the result, not returned as an error.
func (e *Engine) Refresh(ctx context.Context) (*RefreshResult, error) {
	return e.agg.Refresh(ctx)
}

// Feed returns every feed item, newest first.
func (e *Engine) Feed(ctx context.Context) ([]FeedItem, error) {
	return e.feedCol.All(ctx)
}

// MarkRead flips the read flag on a feed item.
func (e *Engine) MarkRead(ctx context.Context, id string, read bool) (FeedItem, error) {
	return e.feedCol.Patch(ctx, id, map[string]any{"isRead": read})
}

// AddSpark inserts a user-authored feed item. Its id is freshly generated:
// nothing external can ever re-produce a user-authored record.
func (e *Engine) AddSpark(ctx context.Context, title, body string) (FeedItem, error) {
	item := FeedItem{
		ID:        uuid.NewString(),
		Kind:      KindUserAuthored,
		Title:     title,
		Body:      body,
		Source:    "me",
		CreatedAt: e.now(),
	}
	if err := e.feedCol.Insert(ctx, item); err != nil {
		return FeedItem{}, err
	}
	return item, nil
}

// DeleteFeedItem removes a feed item outright. No-op when absent.
func (e *Engine) DeleteFeedItem(ctx context.Context, id string) error {
	return e.feedCol.Delete(ctx, id)
}

// TakeFeedItem removes a feed item and returns the stored copy so the
// caller can undo with RestoreFeedItem.
func (e *Engine) TakeFeedItem(ctx context.Context, id string) (FeedItem, error) {
	return e.feedCol.DeleteAndReturn(ctx, id)
}

// RestoreFeedItem re-inserts a previously deleted feed item verbatim.
func (e *Engine) RestoreFeedItem(ctx context.Context, item FeedItem) error {
	return e.feedCol.Put(ctx, item)
}

// PersonalItems returns every personal record, newest first.
func (e *Engine) PersonalItems(ctx context.Context) ([]PersonalItem, error) {
	return e.personal.All(ctx)
}

// CreatePersonal inserts a new personal record. The id and creation time
// are assigned here; tasks without an explicit retention window inherit the
// settings default.
func (e *Engine) CreatePersonal(ctx context.Context, item PersonalItem) (PersonalItem, error) {
	if item.Kind == "" || item.Title == "" {
		return PersonalItem{}, fmt.Errorf("create personal item: kind and title are required")
	}
	item.ID = uuid.NewString()
	item.CreatedAt = e.now()
	if item.Kind == KindTask && item.RetentionDays == 0 {
		item.RetentionDays = e.settings.RetentionDays
	}
	if err := e.personal.Insert(ctx, item); err != nil {
		return PersonalItem{}, err
	}
	return item, nil
}

// UpdatePersonal merges the given fields onto the stored record. Field
// names are the JSON keys (title, content, dueDate, ...). Fails with
// ErrNotFound when the record does not exist.
func (e *Engine) UpdatePersonal(ctx context.Context, id string, fields map[string]any) (PersonalItem, error) {
	return e.personal.Patch(ctx, id, fields)
}

// Complete marks a task done or records a habit completion.
func (e *Engine) Complete(ctx context.Context, id string) (PersonalItem, error) {
	item, err := e.personal.Get(ctx, id)
	if err != nil {
		return PersonalItem{}, err
	}
	fields := map[string]any{"lastCompletedAt": e.now()}
	if item.Kind == KindTask {
		fields["isCompleted"] = true
	}
	return e.personal.Patch(ctx, id, fields)
}

// DeletePersonal removes a personal record outright. No-op when absent.
func (e *Engine) DeletePersonal(ctx context.Context, id string) error {
	return e.personal.Delete(ctx, id)
}

// TakePersonal removes a personal record and returns the stored copy for
// undo via RestorePersonal.
func (e *Engine) TakePersonal(ctx context.Context, id string) (PersonalItem, error) {
	return e.personal.DeleteAndReturn(ctx, id)
}

// RestorePersonal re-inserts a previously deleted personal record verbatim.
func (e *Engine) RestorePersonal(ctx context.Context, item PersonalItem) error {
	return e.personal.Put(ctx, item)
}

// Rollover moves overdue incomplete tasks to today.
func (e *Engine) Rollover(ctx context.Context) ([]RolloverChange, error) {
	return e.jobs.Rollover(ctx)
}

// PurgeCompleted deletes completed tasks past their retention window.
func (e *Engine) PurgeCompleted(ctx context.Context) ([]string, error) {
	return e.jobs.PurgeCompleted(ctx)
}

// Export serializes all collections plus settings into one versioned
// snapshot document.
func (e *Engine) Export(ctx context.Context) ([]byte, error) {
	return e.snap.Export(ctx, e.settings)
}

// Import restores a snapshot document, replacing all collections and the
// settings in one atomic step. A document newer than this code fails with
// ErrVersionTooNew and mutates nothing.
func (e *Engine) Import(ctx context.Context, data []byte) error {
	restored, err := e.snap.Import(ctx, data)
	if err != nil {
		return err
	}
	if restored != nil {
		e.settings = restored
		if e.configPath != "" {
			if err := config.Save(e.configPath, restored); err != nil {
				return fmt.Errorf("save restored settings: %w", err)
			}
		}
	}
	return nil
}

// Wipe clears every collection. With resetSettings, settings also revert to
// defaults (a factory reset).
func (e *Engine) Wipe(ctx context.Context, resetSettings bool) error {
	defaults, err := e.snap.Wipe(ctx, resetSettings)
	if err != nil {
		return err
	}
	if defaults != nil {
		e.settings = defaults
		if e.configPath != "" {
			if err := config.Save(e.configPath, defaults); err != nil {
				return fmt.Errorf("save default settings: %w", err)
			}
		}
	}
	return nil
}
