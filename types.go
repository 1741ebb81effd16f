// Package daybook is a local-first, offline-capable personal data store
// backing a multi-source content feed. The Engine type is the public API;
// the heavy lifting lives in the internal packages.
package daybook

import (
	"github.com/tmarshall/daybook/internal/config"
	"github.com/tmarshall/daybook/internal/feed"
	"github.com/tmarshall/daybook/internal/model"
	"github.com/tmarshall/daybook/internal/tasks"
)

// Domain types, re-exported from the model package.
type (
	FeedItem     = model.FeedItem
	PersonalItem = model.PersonalItem
	FeedKind     = model.FeedKind
	PersonalKind = model.PersonalKind
)

const (
	KindSyndicated   = model.KindSyndicated
	KindUserAuthored = model.KindUserAuthored
	KindGenerated    = model.KindGenerated
	KindCuratedQuote = model.KindCuratedQuote
	KindMarketNews   = model.KindMarketNews

	KindTask  = model.KindTask
	KindHabit = model.KindHabit
	KindNote  = model.KindNote
	KindGoal  = model.KindGoal
)

// Settings is the user configuration document. config.Load and config.Save
// are the file boundary; the Engine holds the loaded value explicitly.
type Settings = config.Settings

// FeedSource configures one syndicated feed subscription in Settings.
type FeedSource = config.FeedSource

// RefreshResult summarizes one aggregator pass: the newly inserted items
// and any per-source failures (which never abort the pass).
type RefreshResult = feed.RefreshResult

// SourceError reports one failed source adapter within a refresh.
type SourceError = feed.SourceError

// RolloverChange records one task whose due date was moved to today.
type RolloverChange = tasks.RolloverChange
