package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tmarshall/daybook/internal/model"
)

// defaultMaxHeadlines bounds how many headlines one symbol contributes per
// cycle.
const defaultMaxHeadlines = 5

// marketHeadline is the wire shape of one headline from the news endpoint.
type marketHeadline struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"` // unix seconds
}

// MarketNewsSource looks up recent headlines for one watched symbol from a
// company-news JSON endpoint.
type MarketNewsSource struct {
	symbol  string
	baseURL string
	client  *http.Client
	max     int
}

func NewMarketNewsSource(symbol, baseURL string, client *http.Client) *MarketNewsSource {
	if client == nil {
		client = &http.Client{}
	}
	return &MarketNewsSource{
		symbol:  symbol,
		baseURL: baseURL,
		client:  client,
		max:     defaultMaxHeadlines,
	}
}

func (s *MarketNewsSource) Name() string         { return "market:" + s.symbol }
func (s *MarketNewsSource) Kind() model.FeedKind { return model.KindMarketNews }

func (s *MarketNewsSource) Fetch(ctx context.Context) ([]Candidate, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("market news base URL: %w", err)
	}
	q := u.Query()
	q.Set("symbol", s.symbol)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", s.symbol, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market news for %s: %w", s.symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market news for %s returned status %d", s.symbol, resp.StatusCode)
	}

	var headlines []marketHeadline
	if err := json.NewDecoder(resp.Body).Decode(&headlines); err != nil {
		return nil, fmt.Errorf("decode market news for %s: %w", s.symbol, err)
	}
	if len(headlines) > s.max {
		headlines = headlines[:s.max]
	}

	candidates := make([]Candidate, 0, len(headlines))
	for _, h := range headlines {
		c := Candidate{
			Title:       fmt.Sprintf("[%s] %s", s.symbol, h.Headline),
			Body:        h.Summary,
			Link:        h.URL,
			GUID:        h.URL,
			RawSourceID: fmt.Sprintf("%d", h.ID),
		}
		if h.Datetime > 0 {
			t := time.Unix(h.Datetime, 0)
			c.PublishedAt = &t
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
