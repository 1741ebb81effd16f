// Package model defines the record types stored in a daybook database.
package model

import "time"

// FeedKind identifies where a feed item came from.
type FeedKind string

const (
	KindSyndicated   FeedKind = "syndicated"
	KindUserAuthored FeedKind = "user-authored"
	KindGenerated    FeedKind = "generated"
	KindCuratedQuote FeedKind = "curated-quote"
	KindMarketNews   FeedKind = "market-news"
)

// PersonalKind identifies the flavor of a personal item.
type PersonalKind string

const (
	KindTask  PersonalKind = "task"
	KindHabit PersonalKind = "habit"
	KindNote  PersonalKind = "note"
	KindGoal  PersonalKind = "goal"
)

// FeedItem is one entry in the unified content feed.
type FeedItem struct {
	ID        string    `json:"id"`
	Kind      FeedKind  `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f FeedItem) RecordID() string           { return f.ID }
func (f FeedItem) RecordCreatedAt() time.Time { return f.CreatedAt }

// PersonalItem is a user-authored record: a task, habit, note, or goal.
// The optional fields only apply to some kinds; a note carries neither a
// due date nor completion state.
type PersonalItem struct {
	ID              string       `json:"id"`
	Kind            PersonalKind `json:"kind"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	CreatedAt       time.Time    `json:"createdAt"`
	DueDate         *time.Time   `json:"dueDate,omitempty"`
	IsCompleted     bool         `json:"isCompleted,omitempty"`
	LastCompletedAt *time.Time   `json:"lastCompletedAt,omitempty"`
	RetentionDays   int          `json:"retentionDays,omitempty"`
}

func (p PersonalItem) RecordID() string           { return p.ID }
func (p PersonalItem) RecordCreatedAt() time.Time { return p.CreatedAt }
