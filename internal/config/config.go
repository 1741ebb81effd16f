// Package config defines daybook's user settings document and its explicit
// load/save boundary. Settings are an ordinary value passed to whoever
// needs them; there is no ambient global.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedSource configures one syndicated feed subscription.
type FeedSource struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	MaxItems int    `yaml:"max_items,omitempty" json:"maxItems,omitempty"`
}

// GeneratorSettings configures the generated-content source.
type GeneratorSettings struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	BaseURL string `yaml:"base_url,omitempty" json:"baseUrl,omitempty"`
	Model   string `yaml:"model,omitempty" json:"model,omitempty"`
	Prompt  string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
}

// QuoteSettings configures the curated daily quote source.
type QuoteSettings struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// MarketSettings configures market-news lookups for watched symbols.
type MarketSettings struct {
	BaseURL string `yaml:"base_url,omitempty" json:"baseUrl,omitempty"`
}

// Settings is the versioned user configuration document. Unknown keys read
// from disk or from an imported snapshot are kept in Extra and written back
// untouched, so a newer document survives being edited by older code.
type Settings struct {
	Feeds         []FeedSource      `yaml:"feeds" json:"feeds"`
	Watchlist     []string          `yaml:"watchlist,omitempty" json:"watchlist,omitempty"`
	Quotes        QuoteSettings     `yaml:"quotes" json:"quotes"`
	Generator     GeneratorSettings `yaml:"generator" json:"generator"`
	Market        MarketSettings    `yaml:"market" json:"market"`
	RetentionDays int               `yaml:"retention_days" json:"retentionDays"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// knownJSONKeys are the top-level keys owned by the struct fields above;
// everything else round-trips through Extra.
var knownJSONKeys = []string{
	"feeds", "watchlist", "quotes", "generator", "market", "retentionDays",
}

// Default returns the settings used when no config file exists yet.
func Default() *Settings {
	return &Settings{
		Feeds: []FeedSource{
			{Name: "hn", URL: "https://news.ycombinator.com/rss", MaxItems: 10},
		},
		Quotes:        QuoteSettings{Enabled: true},
		Generator:     GeneratorSettings{BaseURL: "http://localhost:11434", Model: "llama3"},
		RetentionDays: 30,
	}
}

// Load reads settings from path, merging the file over Default(). A missing
// file yields the defaults without error; a malformed file is an error.
func Load(path string) (*Settings, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// settingsJSON mirrors Settings for plain JSON encoding without the custom
// methods below recursing into themselves.
type settingsJSON struct {
	Feeds         []FeedSource      `json:"feeds"`
	Watchlist     []string          `json:"watchlist,omitempty"`
	Quotes        QuoteSettings     `json:"quotes"`
	Generator     GeneratorSettings `json:"generator"`
	Market        MarketSettings    `json:"market"`
	RetentionDays int               `json:"retentionDays"`
}

// MarshalJSON writes the known fields plus any preserved unknown keys.
func (s Settings) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(settingsJSON{
		Feeds:         s.Feeds,
		Watchlist:     s.Watchlist,
		Quotes:        s.Quotes,
		Generator:     s.Generator,
		Market:        s.Market,
		RetentionDays: s.RetentionDays,
	})
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return known, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(known, &doc); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, owned := doc[k]; owned {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		doc[k] = raw
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the known fields and stashes everything else in Extra.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var known settingsJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, k := range knownJSONKeys {
		delete(doc, k)
	}
	*s = Settings{
		Feeds:         known.Feeds,
		Watchlist:     known.Watchlist,
		Quotes:        known.Quotes,
		Generator:     known.Generator,
		Market:        known.Market,
		RetentionDays: known.RetentionDays,
	}
	if len(doc) > 0 {
		s.Extra = doc
	}
	return nil
}
