package sources

import (
	"context"
	"testing"
	"time"

	"github.com/tmarshall/daybook/internal/model"
)

func TestQuoteSourceDeterministicPerDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	src := NewQuoteSource("quotes", func() time.Time { return day })

	if src.Kind() != model.KindCuratedQuote {
		t.Errorf("Kind = %s", src.Kind())
	}

	first, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(first))
	}
	if first[0].Body == "" {
		t.Error("empty quote body")
	}

	// Same day, later hour: identical quote.
	src.now = func() time.Time { return day.Add(10 * time.Hour) }
	second, _ := src.Fetch(context.Background())
	if second[0].Body != first[0].Body {
		t.Error("quote changed within the same day")
	}

	// Next day: a different quote.
	src.now = func() time.Time { return day.Add(24 * time.Hour) }
	third, _ := src.Fetch(context.Background())
	if third[0].Body == first[0].Body {
		t.Error("quote did not rotate on the next day")
	}
}
