package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/tmarshall/daybook/internal/model"
)

const userAgent = "daybook/1.0"

// defaultMaxItems bounds how many entries a single syndicated source can
// contribute per cycle when the subscription doesn't set its own cap.
const defaultMaxItems = 20

// RSSSource fetches and parses one RSS/Atom feed. Entry bodies are
// stripped to plain text before they reach the store.
type RSSSource struct {
	name     string
	url      string
	maxItems int
	parser   *gofeed.Parser
	client   *http.Client
	policy   *bluemonday.Policy
}

func NewRSSSource(name, url string, maxItems int, client *http.Client) *RSSSource {
	if client == nil {
		client = &http.Client{}
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &RSSSource{
		name:     name,
		url:      url,
		maxItems: maxItems,
		parser:   parser,
		client:   client,
		policy:   bluemonday.StrictPolicy(),
	}
}

func (s *RSSSource) Name() string         { return s.name }
func (s *RSSSource) Kind() model.FeedKind { return model.KindSyndicated }

func (s *RSSSource) Fetch(ctx context.Context) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", s.url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", s.url, err)
	}

	parsed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	items := append([]*gofeed.Item(nil), parsed.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].PublishedParsed, items[j].PublishedParsed
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		content := item.Description
		if content == "" {
			content = item.Content
		}
		c := Candidate{
			Title: strings.TrimSpace(item.Title),
			Body:  strings.TrimSpace(s.policy.Sanitize(content)),
			Link:  item.Link,
			GUID:  item.GUID,
		}
		if item.PublishedParsed != nil {
			c.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			c.PublishedAt = item.UpdatedParsed
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
