package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmarshall/daybook/internal/model"
)

func TestMarketNewsFetch(t *testing.T) {
	var gotSymbol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		json.NewEncoder(w).Encode([]marketHeadline{
			{ID: 1, Headline: "Earnings beat expectations", Summary: "Up 4%", URL: "https://example.com/n/1", Datetime: 1756700000},
			{ID: 2, Headline: "New product line", Summary: "Announced today", URL: "https://example.com/n/2", Datetime: 1756600000},
		})
	}))
	defer server.Close()

	src := NewMarketNewsSource("AAPL", server.URL, nil)
	if src.Name() != "market:AAPL" {
		t.Errorf("Name = %q", src.Name())
	}
	if src.Kind() != model.KindMarketNews {
		t.Errorf("Kind = %s", src.Kind())
	}

	candidates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotSymbol != "AAPL" {
		t.Errorf("request carried symbol %q", gotSymbol)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Title != "[AAPL] Earnings beat expectations" {
		t.Errorf("title = %q", c.Title)
	}
	if c.GUID != "https://example.com/n/1" || c.RawSourceID != "1" {
		t.Errorf("identity fields: guid=%q raw=%q", c.GUID, c.RawSourceID)
	}
	if c.PublishedAt == nil {
		t.Error("published timestamp missing")
	}
}

func TestMarketNewsFetchCapsHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var headlines []marketHeadline
		for i := 0; i < 20; i++ {
			headlines = append(headlines, marketHeadline{ID: int64(i), Headline: "h", URL: "u"})
		}
		json.NewEncoder(w).Encode(headlines)
	}))
	defer server.Close()

	src := NewMarketNewsSource("TSLA", server.URL, nil)
	candidates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candidates) != defaultMaxHeadlines {
		t.Errorf("got %d candidates, want %d", len(candidates), defaultMaxHeadlines)
	}
}

func TestMarketNewsFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewMarketNewsSource("AAPL", server.URL, nil)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch with error status returned nil error")
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer bad.Close()

	src = NewMarketNewsSource("AAPL", bad.URL, nil)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch of malformed payload returned nil error")
	}
}
