package sources

import (
	"context"

	"github.com/tmarshall/daybook/internal/model"
)

// Generator produces one piece of generated content. The concrete prompt
// and provider live behind this boundary.
type Generator interface {
	Generate(ctx context.Context) (title, body string, err error)
}

// GeneratedSource wraps a Generator as a once-per-day feed source. The
// once-per-day guarantee comes from the aggregator's daily identity, not
// from any state kept here.
type GeneratedSource struct {
	name string
	gen  Generator
}

func NewGeneratedSource(name string, gen Generator) *GeneratedSource {
	return &GeneratedSource{name: name, gen: gen}
}

func (s *GeneratedSource) Name() string         { return s.name }
func (s *GeneratedSource) Kind() model.FeedKind { return model.KindGenerated }

func (s *GeneratedSource) Fetch(ctx context.Context) ([]Candidate, error) {
	title, body, err := s.gen.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return []Candidate{{Title: title, Body: body}}, nil
}
