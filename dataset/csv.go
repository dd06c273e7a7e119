// Package dataset persists and reads crawl output: the CSV file consumed by
// dashboards, a SQLite history of runs, and the read helpers behind the
// dashboard views.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pevans/archetyper/character"
)

// CSV column names.
const (
	ColName            = "Name"
	ColSeries          = "Series"
	ColWikiURL         = "Wiki URL"
	ColSourceURL       = "Source URL"
	ColPowers          = "Powers"
	ColArchetypes      = "Archetypes"
	ColMatchedKeywords = "Matched Keywords"
	ColDominantColors  = "Dominant Colors"
	ColImageURL        = "Image URL"
	ColColor           = "Color"
	ColAffiliations    = "Affiliations"
)

// Header is the column order written by WriteCSV.
var Header = []string{
	ColName,
	ColSeries,
	ColWikiURL,
	ColPowers,
	ColArchetypes,
	ColMatchedKeywords,
	ColDominantColors,
	ColImageURL,
	ColColor,
	ColAffiliations,
}

// WriteCSV writes a header row and one row per record. Absent values are
// written as empty cells.
func WriteCSV(w io.Writer, records []*character.Character) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Name,
			r.Series,
			r.WikiURL,
			character.Deref(r.Powers),
			r.ArchetypeLabel(),
			strings.Join(r.MatchedKeywords, ", "),
			character.FormatColors(r.DominantColors),
			r.ImageURL,
			character.Deref(r.Color),
			character.Deref(r.Affiliations),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV or by an older crawl. Columns are
// matched by header name, unknown columns are ignored, and a missing column
// reads as empty. "Source URL" is accepted in place of "Wiki URL".
func ReadCSV(r io.Reader) ([]*character.Character, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []*character.Character{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := index[ColWikiURL]; !ok {
		if i, ok := index[ColSourceURL]; ok {
			index[ColWikiURL] = i
		}
	}

	records := []*character.Character{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		records = append(records, &character.Character{
			Name:            cell(ColName),
			Series:          cell(ColSeries),
			WikiURL:         cell(ColWikiURL),
			Powers:          character.StringPtr(cell(ColPowers)),
			Archetype:       character.StringPtr(cell(ColArchetypes)),
			MatchedKeywords: splitList(cell(ColMatchedKeywords)),
			DominantColors:  character.ParseColors(cell(ColDominantColors)),
			ImageURL:        cell(ColImageURL),
			Color:           character.StringPtr(cell(ColColor)),
			Affiliations:    character.StringPtr(cell(ColAffiliations)),
		})
	}

	return records, nil
}

// SaveCSV writes records to path, creating parent directories. The file is
// written beside its destination and renamed into place.
func SaveCSV(path string, records []*character.Character) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp opens 0600; the dataset is meant to be read by other users.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set dataset permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}

// LoadCSV reads a dataset file.
func LoadCSV(path string) ([]*character.Character, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return character.ArchetypeList(cell)
}
