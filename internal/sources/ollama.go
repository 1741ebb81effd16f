package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator generates the daily content item with a local Ollama
// model. The prompt text comes from user settings.
type OllamaGenerator struct {
	client *api.Client
	model  string
	prompt string
}

func NewOllamaGenerator(baseURL, model, prompt string) (*OllamaGenerator, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		parsedURL, parseErr := url.Parse(baseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid base URL: %w", parseErr)
		}
		client = api.NewClient(parsedURL, nil)
	}
	return &OllamaGenerator{client: client, model: model, prompt: prompt}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context) (string, string, error) {
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: g.prompt,
		Stream: new(bool), // false
	}

	var full strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		full.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("ollama generate: %w", err)
	}

	body := strings.TrimSpace(full.String())
	if body == "" {
		return "", "", fmt.Errorf("ollama generate: empty response from model %s", g.model)
	}
	return "Daily note", body, nil
}
