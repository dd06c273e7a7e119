// Package config defines the crawl catalog: which wiki sources to crawl, how
// pages are fetched and classified, and where results are written.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pevans/archetyper/archetype"
	"github.com/pevans/archetyper/crawl"
	"github.com/pevans/archetyper/fetch"
	"github.com/pevans/archetyper/logger"
	"github.com/pevans/archetyper/palette"
	"github.com/pevans/archetyper/scraper"
)

// ErrNoSources is returned when a catalog lists no sources.
var ErrNoSources = errors.New("at least one source is required")

// Config is the full crawl catalog.
type Config struct {
	Crawl   CrawlConfig            `yaml:"crawl"`
	Output  OutputConfig           `yaml:"output"`
	Log     logger.Config          `yaml:"log"`
	Extract scraper.ExtractConfig  `yaml:"extract,omitempty"`
	Sources []scraper.SourceConfig `yaml:"sources"`
	// Archetypes replaces the variant's built-in keyword table when set.
	Archetypes *archetype.Table `yaml:"archetypes,omitempty"`
}

// CrawlConfig controls fetching and classification.
type CrawlConfig struct {
	Variant     string        `yaml:"variant"`
	Workers     int           `yaml:"workers"`
	MinInterval time.Duration `yaml:"min_interval"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
}

// OutputConfig names the files a crawl writes. An empty path disables that
// output.
type OutputConfig struct {
	CSV    string `yaml:"csv"`
	SQLite string `yaml:"sqlite"`
}

// Default returns the refined catalog of the five original series.
func Default() *Config {
	return &Config{
		Crawl: CrawlConfig{
			Variant: "refined",
			Workers: crawl.DefaultWorkers,
			Timeout: fetch.DefaultOptions().Timeout,
		},
		Output: OutputConfig{
			CSV:    "magical_girls_dataset.csv",
			SQLite: "archetyper.db",
		},
		Log:     logger.Config{Level: "info", Format: "console"},
		Extract: scraper.NewExtractConfig(),
		Sources: DefaultSources(),
	}
}

// CoarseDefault returns the coarse catalog. It spaces requests to one host a
// second apart.
func CoarseDefault() *Config {
	cfg := Default()
	cfg.Crawl.Variant = "coarse"
	cfg.Crawl.MinInterval = time.Second
	cfg.Output.CSV = "magical_girl_master_dataset_keywords.csv"
	return cfg
}

// DefaultSources returns the built-in series listing pages.
func DefaultSources() []scraper.SourceConfig {
	return []scraper.SourceConfig{
		{
			Label:      "Sailor Moon",
			URL:        "https://sailormoon.fandom.com/wiki/Sailor_Guardians",
			Domain:     "https://sailormoon.fandom.com",
			SectionIDs: []string{"Present_(20th_or_21st_Century)"},
		},
		{
			Label:      "Winx Club",
			URL:        "https://winx.fandom.com/wiki/Winx_(Group)",
			Domain:     "https://winx.fandom.com",
			SectionIDs: []string{"Members"},
		},
		{
			Label:      "Pretty Cure",
			URL:        "https://prettycure.fandom.com/wiki/Kimi_to_Idol_Pretty_Cure%E2%99%AA",
			Domain:     "https://prettycure.fandom.com",
			SectionIDs: []string{"Pretty_Cure"},
		},
		{
			Label:      "Lolirock",
			URL:        "https://lolirock.fandom.com/wiki/LoliRock_(Band)",
			Domain:     "https://lolirock.fandom.com",
			SectionIDs: []string{"Members"},
		},
		{
			Label:      "Powerpuff Girls",
			URL:        "https://powerpuffgirls.fandom.com/wiki/List_of_characters",
			Domain:     "https://powerpuffgirls.fandom.com",
			SectionIDs: []string{"The_Powerpuff_Girls"},
		},
	}
}

// Validate checks the catalog for errors.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for _, src := range c.Sources {
		if err := src.Validate(); err != nil {
			return err
		}
		if _, ok := seen[src.Label]; ok {
			return fmt.Errorf("duplicate source label: %s", src.Label)
		}
		seen[src.Label] = struct{}{}
	}

	if c.Crawl.Workers < 1 || c.Crawl.Workers > crawl.MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", crawl.MaxWorkers, c.Crawl.Workers)
	}
	if c.Crawl.MinInterval < 0 {
		return errors.New("min_interval must not be negative")
	}
	if c.Crawl.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if n := c.Extract.PaletteSize; n != 0 && (n < 1 || n > palette.MaxSize) {
		return fmt.Errorf("palette_size must be between 1 and %d, got %d", palette.MaxSize, n)
	}

	if _, err := c.Table(); err != nil {
		return err
	}

	return nil
}

// Table returns the keyword table in effect: the override when present,
// otherwise the variant's built-in table.
func (c *Config) Table() (archetype.Table, error) {
	if c.Archetypes != nil {
		if err := c.Archetypes.Validate(); err != nil {
			return archetype.Table{}, fmt.Errorf("invalid archetypes: %w", err)
		}
		return *c.Archetypes, nil
	}

	table, ok := archetype.ByName(c.Crawl.Variant)
	if !ok {
		return archetype.Table{}, fmt.Errorf("unknown variant %q: must be refined or coarse", c.Crawl.Variant)
	}
	return table, nil
}

// Classifier builds a classifier for the table in effect.
func (c *Config) Classifier() (*archetype.Classifier, error) {
	table, err := c.Table()
	if err != nil {
		return nil, err
	}
	return archetype.NewClassifier(table), nil
}

// FetchOptions returns the HTTP client settings.
func (c *Config) FetchOptions() fetch.Options {
	return fetch.Options{
		Timeout:     c.Crawl.Timeout,
		UserAgent:   c.Crawl.UserAgent,
		MinInterval: c.Crawl.MinInterval,
	}
}

// CrawlConfig returns the orchestrator settings.
func (c *Config) CrawlConfig() *crawl.Config {
	return &crawl.Config{Workers: c.Crawl.Workers}
}

// Source returns the source with the given label.
func (c *Config) Source(label string) (scraper.SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Label == label {
			return src, true
		}
	}
	return scraper.SourceConfig{}, false
}
