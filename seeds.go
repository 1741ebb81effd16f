package daybook

import (
	"time"

	"github.com/tmarshall/daybook/internal/model"
)

// seedFeedItems is written to an empty feed collection on first read.
func seedFeedItems(now time.Time) []model.FeedItem {
	return []model.FeedItem{
		{
			ID:        "welcome",
			Kind:      model.KindUserAuthored,
			Title:     "Welcome to daybook",
			Body:      "Your feed fills up when you run a refresh. Add feeds, watch symbols, or write a spark of your own.",
			Source:    "daybook",
			CreatedAt: now,
		},
	}
}

// seedPersonalItems is written to an empty personal collection on first
// read.
func seedPersonalItems(now time.Time) []model.PersonalItem {
	due := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []model.PersonalItem{
		{
			ID:        "seed-first-task",
			Kind:      model.KindTask,
			Title:     "Try checking off a task",
			Content:   "Complete me, or roll me over tomorrow.",
			CreatedAt: now,
			DueDate:   &due,
		},
		{
			ID:        "seed-welcome-note",
			Kind:      model.KindNote,
			Title:     "Notes live here",
			Content:   "Notes, goals, and habits share this space with your tasks.",
			CreatedAt: now,
		},
	}
}
