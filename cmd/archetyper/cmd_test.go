package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/config"
	"github.com/pevans/archetyper/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectSources verifies label filtering keeps catalog order
func TestSelectSources(t *testing.T) {
	all := config.DefaultSources()

	got, err := selectSources(all, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = selectSources(all, []string{all[2].Label, all[0].Label})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, all[0].Label, got[0].Label)
	assert.Equal(t, all[2].Label, got[1].Label)

	_, err = selectSources(all, []string{"Digimon"})
	assert.ErrorContains(t, err, "unknown source: Digimon")
}

// TestInitCommand verifies the built-in catalog is written and loads back
func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	cmd := newInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Sources, loaded.Sources)

	cmd = newInitCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	assert.ErrorContains(t, cmd.Execute(), "already exists")
}

// TestPrintCharacters verifies records and the empty case render
func TestPrintCharacters(t *testing.T) {
	var out bytes.Buffer
	printCharacters(&out, nil)
	assert.Equal(t, "No characters to display.\n", out.String())

	out.Reset()
	printCharacters(&out, []*character.Character{{
		Name:            "Bloom",
		Series:          "Winx Club",
		Archetype:       character.StringPtr("Leader"),
		MatchedKeywords: []string{"leader"},
		DominantColors:  []character.RGB{{R: 240, G: 98, B: 146}},
	}})
	assert.Contains(t, out.String(), "Bloom")
	assert.Contains(t, out.String(), "Leader")
	assert.Contains(t, out.String(), "#f06292")
}

// TestPrintCrawlSummary verifies skipped sources show their error
func TestPrintCrawlSummary(t *testing.T) {
	start := time.Now()
	summary := crawl.Summary{
		Sources: []crawl.SourceSummary{
			{Label: "Winx Club", Links: 3, Scraped: 2, Failed: 1},
			{Label: "Sailor Moon", Err: assert.AnError},
		},
		Started:  start,
		Finished: start.Add(time.Second),
	}

	var out bytes.Buffer
	printCrawlSummary(&out, summary)

	assert.Contains(t, out.String(), "Winx Club")
	assert.Contains(t, out.String(), "skipped: "+assert.AnError.Error())
}

// TestSourceLabels verifies labels are listed in catalog order
func TestSourceLabels(t *testing.T) {
	all := config.DefaultSources()

	labels := sourceLabels(all)

	require.Len(t, labels, len(all))
	assert.Equal(t, all[0].Label, labels[0])
	assert.Empty(t, sourceLabels(nil))
}
