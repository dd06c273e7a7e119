package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/crawl"
	"github.com/pevans/archetyper/dataset"
	"github.com/pevans/archetyper/scraper"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

// printJSON prints v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCrawlSummary prints per-source counts of a finished crawl
func printCrawlSummary(w io.Writer, summary crawl.Summary) {
	t := newTable(w, table.Row{"Source", "Links", "Scraped", "Failed", "Skipped", "Status"})
	for _, s := range summary.Sources {
		status := "ok"
		if s.Err != nil {
			status = "skipped: " + s.Err.Error()
		}
		t.AppendRow(table.Row{s.Label, s.Links, s.Scraped, s.Failed, s.Skipped, status})
	}
	t.AppendFooter(table.Row{"Total", "", summary.Total(), "", "", summary.Finished.Sub(summary.Started).Round(time.Millisecond)})
	t.Render()
}

// printCharacters prints records in human-readable table format
func printCharacters(w io.Writer, records []*character.Character) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No characters to display.")
		return
	}

	t := newTable(w, table.Row{"Name", "Series", "Archetype", "Keywords", "Colors"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Name,
			r.Series,
			r.ArchetypeLabel(),
			strings.Join(r.MatchedKeywords, ", "),
			hexColors(r.DominantColors),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(records)})
	t.Render()
}

func hexColors(colors []character.RGB) string {
	hex := make([]string, 0, len(colors))
	for _, c := range colors {
		hex = append(hex, c.Hex())
	}
	return strings.Join(hex, " ")
}

func printStats(w io.Writer, records []*character.Character, keywords int) {
	dist := newTable(w, table.Row{"Series", "Archetype", "Count"})
	for _, row := range dataset.Distribution(records) {
		dist.AppendRow(table.Row{row.Series, row.Archetype, row.Count})
	}
	dist.Render()

	div := newTable(w, table.Row{"Series", "Archetypes", "Characters"})
	for _, row := range dataset.Diversity(records) {
		div.AppendRow(table.Row{row.Series, row.Archetypes, row.Characters})
	}
	div.Render()

	kw := newTable(w, table.Row{"Keyword", "Count"})
	for _, row := range dataset.TopKeywords(records, keywords) {
		kw.AppendRow(table.Row{row.Keyword, row.Count})
	}
	kw.Render()
}

func printSources(w io.Writer, sources []scraper.SourceConfig) {
	t := newTable(w, table.Row{"Label", "Mode", "Sections", "URL"})
	for _, s := range sources {
		t.AppendRow(table.Row{s.Label, s.DiscoveryMode(), strings.Join(s.SectionIDs, ", "), s.URL})
	}
	t.Render()
}

func printRuns(w io.Writer, runs []dataset.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored.")
		return
	}

	t := newTable(w, table.Row{"Run ID", "Variant", "Started", "Characters", "Interrupted"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.RunID, r.Variant, r.StartedAt.Local().Format(time.DateTime), r.Total, r.Interrupted})
	}
	t.Render()
}
