package config

import (
	"errors"
	"testing"
	"time"

	"github.com/pevans/archetyper/archetype"
	"github.com/pevans/archetyper/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the built-in catalog is valid and complete
func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "refined", cfg.Crawl.Variant)
	assert.Equal(t, 4, cfg.Crawl.Workers)
	assert.Equal(t, 10*time.Second, cfg.Crawl.Timeout)
	assert.Zero(t, cfg.Crawl.MinInterval)
	require.Len(t, cfg.Sources, 5)
	assert.Equal(t, "Sailor Moon", cfg.Sources[0].Label)
	assert.Equal(t, []string{"Present_(20th_or_21st_Century)"}, cfg.Sources[0].SectionIDs)
	assert.Equal(t, "Powerpuff Girls", cfg.Sources[4].Label)
}

// TestCoarseDefault verifies the coarse catalog uses the coarse table and a
// polite interval
func TestCoarseDefault(t *testing.T) {
	cfg := CoarseDefault()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.FetchOptions().MinInterval)

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, archetype.Unknown, table.NoMatch)
	assert.Len(t, table.Categories, 6)
}

// TestValidate verifies rejected catalogs
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no sources", func(c *Config) { c.Sources = nil }, ErrNoSources},
		{"zero workers", func(c *Config) { c.Crawl.Workers = 0 }, nil},
		{"too many workers", func(c *Config) { c.Crawl.Workers = 9 }, nil},
		{"negative interval", func(c *Config) { c.Crawl.MinInterval = -time.Second }, nil},
		{"no timeout", func(c *Config) { c.Crawl.Timeout = 0 }, nil},
		{"palette too large", func(c *Config) { c.Extract.PaletteSize = 6 }, nil},
		{"unknown variant", func(c *Config) { c.Crawl.Variant = "fine" }, nil},
		{"duplicate label", func(c *Config) { c.Sources[1].Label = c.Sources[0].Label }, nil},
		{"bad mode", func(c *Config) { c.Sources[0].Mode = "sitemap" }, scraper.ErrInvalidMode},
		{"empty override", func(c *Config) { c.Archetypes = &archetype.Table{Name: "custom"} }, nil},
		{"custom no-match label", func(c *Config) {
			c.Archetypes = &archetype.Table{
				Name:       "custom",
				Categories: []archetype.Category{{Label: "Star", Keywords: []string{"sparkle"}}},
				NoMatch:    "None",
			}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
		})
	}
}

// TestClassifier_Override verifies a custom table replaces the variant
func TestClassifier_Override(t *testing.T) {
	cfg := Default()
	cfg.Crawl.Variant = "anything"
	cfg.Archetypes = &archetype.Table{
		Name:       "custom",
		Categories: []archetype.Category{{Label: "Star", Keywords: []string{"sparkle"}}},
		NoMatch:    archetype.Unknown,
	}
	require.NoError(t, cfg.Validate())

	classifier, err := cfg.Classifier()
	require.NoError(t, err)

	assert.Equal(t, "Star", classifier.Classify("Sparkle power").Archetype)
	assert.Equal(t, archetype.Unknown, classifier.Classify("nothing").Archetype)
}

// TestSource verifies lookup by label
func TestSource(t *testing.T) {
	cfg := Default()

	src, ok := cfg.Source("Winx Club")
	require.True(t, ok)
	assert.Equal(t, "https://winx.fandom.com", src.Domain)

	_, ok = cfg.Source("Tokyo Mew Mew")
	assert.False(t, ok)
}

// TestCrawlConfig verifies orchestrator settings are carried over
func TestCrawlConfig(t *testing.T) {
	cfg := Default()
	cfg.Crawl.Workers = 6

	assert.Equal(t, 6, cfg.CrawlConfig().Workers)
}
