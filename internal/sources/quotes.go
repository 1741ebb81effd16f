package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/tmarshall/daybook/internal/model"
)

// Quote is one entry in the curated corpus.
type Quote struct {
	Text   string
	Author string
}

// builtinQuotes is the offline corpus for the default daily quote source.
var builtinQuotes = []Quote{
	{"The secret of getting ahead is getting started.", "Mark Twain"},
	{"It always seems impossible until it's done.", "Nelson Mandela"},
	{"Well begun is half done.", "Aristotle"},
	{"We are what we repeatedly do. Excellence, then, is not an act, but a habit.", "Will Durant"},
	{"Simplicity is the ultimate sophistication.", "Leonardo da Vinci"},
	{"What gets measured gets managed.", "Peter Drucker"},
	{"A year from now you may wish you had started today.", "Karen Lamb"},
	{"How we spend our days is, of course, how we spend our lives.", "Annie Dillard"},
	{"The best way out is always through.", "Robert Frost"},
	{"Make it work, make it right, make it fast.", "Kent Beck"},
	{"Amateurs sit and wait for inspiration, the rest of us just get up and go to work.", "Stephen King"},
	{"You do not rise to the level of your goals. You fall to the level of your systems.", "James Clear"},
}

// QuoteSource serves one quote per calendar day from a fixed corpus. It
// needs no network and never fails.
type QuoteSource struct {
	name   string
	quotes []Quote
	now    func() time.Time
}

func NewQuoteSource(name string, now func() time.Time) *QuoteSource {
	if now == nil {
		now = time.Now
	}
	return &QuoteSource{name: name, quotes: builtinQuotes, now: now}
}

func (s *QuoteSource) Name() string         { return s.name }
func (s *QuoteSource) Kind() model.FeedKind { return model.KindCuratedQuote }

func (s *QuoteSource) Fetch(_ context.Context) ([]Candidate, error) {
	day := s.now()
	q := s.quotes[day.YearDay()%len(s.quotes)]
	return []Candidate{{
		Title: "Quote of the day",
		Body:  fmt.Sprintf("%q — %s", q.Text, q.Author),
	}}, nil
}
