package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmarshall/daybook/internal/model"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <item>
      <title>Newest Post</title>
      <link>https://example.com/3</link>
      <guid>post-3</guid>
      <description>&lt;p&gt;Rich &lt;b&gt;HTML&lt;/b&gt; body&lt;/p&gt;&lt;script&gt;alert(1)&lt;/script&gt;</description>
      <pubDate>Mon, 31 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Middle Post</title>
      <link>https://example.com/2</link>
      <guid>post-2</guid>
      <description>Plain body</description>
      <pubDate>Sun, 30 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Oldest Post</title>
      <link>https://example.com/1</link>
      <guid>post-1</guid>
      <description>Old body</description>
      <pubDate>Sat, 29 Aug 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	src := NewRSSSource("blog", server.URL, 0, nil)
	if src.Kind() != model.KindSyndicated {
		t.Errorf("Kind = %s", src.Kind())
	}

	candidates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Title != "Newest Post" {
		t.Errorf("first candidate is %q, want newest", candidates[0].Title)
	}
	if candidates[0].GUID != "post-3" {
		t.Errorf("guid = %q", candidates[0].GUID)
	}
	if candidates[0].PublishedAt == nil {
		t.Errorf("published date not parsed")
	}
}

func TestRSSFetchStripsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	src := NewRSSSource("blog", server.URL, 0, nil)
	candidates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	body := candidates[0].Body
	if body != "Rich HTML body" {
		t.Errorf("body not sanitized to plain text: %q", body)
	}
}

func TestRSSFetchAppliesCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	src := NewRSSSource("blog", server.URL, 2, nil)
	candidates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("cap of 2 returned %d candidates", len(candidates))
	}
	// The cap keeps the most recent entries.
	if candidates[0].Title != "Newest Post" || candidates[1].Title != "Middle Post" {
		t.Errorf("cap kept wrong entries: %q, %q", candidates[0].Title, candidates[1].Title)
	}
}

func TestRSSFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	src := NewRSSSource("blog", server.URL, 0, nil)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch of erroring feed returned nil error")
	}

	down := NewRSSSource("blog", "http://127.0.0.1:1", 0, nil)
	if _, err := down.Fetch(context.Background()); err == nil {
		t.Error("Fetch of unreachable feed returned nil error")
	}
}
