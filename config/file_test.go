package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pevans/archetyper/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFile_NoFile verifies a missing file is an error
func TestLoadFile_NoFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "archetyper.yaml"))

	assert.Error(t, err)
}

// TestLoadFile_ValidConfig verifies file values override defaults
func TestLoadFile_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "archetyper.yaml")
	configContent := `crawl:
  variant: coarse
  workers: 2
  min_interval: 1500ms
output:
  csv: out/characters.csv
log:
  level: debug
extract:
  palette_size: 5
sources:
  - label: Winx Club
    url: https://winx.fandom.com/wiki/Winx_(Group)
    domain: https://winx.fandom.com
    section_ids: [Members]
  - label: Lolirock
    url: https://lolirock.fandom.com/wiki/Special:NewPages?feed=rss
    domain: https://lolirock.fandom.com
    mode: feed
    denylist: ["Category:", "User:"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "coarse", cfg.Crawl.Variant)
	assert.Equal(t, 2, cfg.Crawl.Workers)
	assert.Equal(t, 1500*time.Millisecond, cfg.Crawl.MinInterval)
	assert.Equal(t, 10*time.Second, cfg.Crawl.Timeout, "unset values keep defaults")
	assert.Equal(t, "out/characters.csv", cfg.Output.CSV)
	assert.Equal(t, "archetyper.db", cfg.Output.SQLite)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Extract.PaletteSize)
	assert.Equal(t, 200, cfg.Extract.MaxSectionScan)

	require.Len(t, cfg.Sources, 2, "file sources replace the built-in list")
	assert.Equal(t, []string{"Members"}, cfg.Sources[0].SectionIDs)
	assert.Equal(t, scraper.ModeFeed, cfg.Sources[1].DiscoveryMode())
	assert.Equal(t, []string{"Category:", "User:"}, cfg.Sources[1].PathDenylist())
}

// TestLoadFile_Archetypes verifies a keyword table can be supplied
func TestLoadFile_Archetypes(t *testing.T) {
	cfg, err := Parse([]byte(`archetypes:
  name: custom
  context_clues: [personality]
  categories:
    - label: Idol
      keywords: [singer, idol]
    - label: Leader
      keywords: [leader]
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	classifier, err := cfg.Classifier()
	require.NoError(t, err)

	result := classifier.Classify("Her personality: a cheerful idol and singer.")
	assert.Equal(t, "Idol", result.Archetype)
	assert.Equal(t, 2, result.Score)
	assert.Empty(t, classifier.Classify("An idol.").Archetype, "context clue missing")
}

// TestLoadFile_InvalidYAML verifies parse errors are reported
func TestLoadFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "archetyper.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("crawl: [unclosed"), 0o600))

	_, err := LoadFile(configPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// TestSave verifies a saved catalog loads back unchanged
func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archetyper.yaml")
	cfg := CoarseDefault()

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
