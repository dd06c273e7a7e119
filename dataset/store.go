package dataset

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/crawl"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored crawl.
type Run struct {
	RunID       uuid.UUID      `json:"run_id"`
	Variant     string         `json:"variant"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Total       int            `json:"total"`
	Interrupted bool           `json:"interrupted"`
	Sources     []SourceResult `json:"sources"`
}

// SourceResult is the per-source outcome of a run.
type SourceResult struct {
	Label   string  `json:"label"`
	Links   int     `json:"links"`
	Scraped int     `json:"scraped"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// NewRun describes a finished or interrupted crawl for storage.
func NewRun(summary crawl.Summary, variant string, interrupted bool) Run {
	run := Run{
		RunID:       uuid.New(),
		Variant:     variant,
		StartedAt:   summary.Started,
		FinishedAt:  summary.Finished,
		Total:       summary.Total(),
		Interrupted: interrupted,
		Sources:     make([]SourceResult, 0, len(summary.Sources)),
	}
	for _, s := range summary.Sources {
		result := SourceResult{Label: s.Label, Links: s.Links, Scraped: s.Scraped, Failed: s.Failed, Skipped: s.Skipped}
		if s.Err != nil {
			msg := s.Err.Error()
			result.Error = &msg
		}
		run.Sources = append(run.Sources, result)
	}
	return run
}

// Store keeps crawl runs and their records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		total INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		sources TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS characters (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		series TEXT NOT NULL,
		wiki_url TEXT NOT NULL,
		powers TEXT,
		archetype TEXT,
		matched_keywords TEXT,
		dominant_colors TEXT NOT NULL,
		image_url TEXT NOT NULL,
		color TEXT,
		affiliations TEXT,
		PRIMARY KEY (run_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_characters_series ON characters(run_id, series);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its records in one transaction. A zero RunID is
// replaced with a new one; the stored run is returned.
func (s *Store) SaveRun(run Run, records []*character.Character) (Run, error) {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}
	run.Total = len(records)
	if run.Sources == nil {
		run.Sources = []SourceResult{}
	}

	sourcesJSON, err := json.Marshal(run.Sources)
	if err != nil {
		return Run{}, fmt.Errorf("failed to marshal sources: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, variant, started_at, finished_at, total, interrupted, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID.String(),
		run.Variant,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Total,
		run.Interrupted,
		string(sourcesJSON),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO characters (
			run_id, position, name, series, wiki_url, powers, archetype,
			matched_keywords, dominant_colors, image_url, color, affiliations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var keywords *string
		if len(r.MatchedKeywords) > 0 {
			data, err := json.Marshal(r.MatchedKeywords)
			if err != nil {
				return Run{}, fmt.Errorf("failed to marshal matched keywords: %w", err)
			}
			str := string(data)
			keywords = &str
		}

		_, err := stmt.Exec(
			run.RunID.String(), i, r.Name, r.Series, r.WikiURL,
			r.Powers, r.Archetype, keywords,
			character.FormatColors(r.DominantColors), r.ImageURL,
			r.Color, r.Affiliations,
		)
		if err != nil {
			return Run{}, fmt.Errorf("failed to insert character %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}

	return run, nil
}

const runColumns = `run_id, variant, started_at, finished_at, total, interrupted, sources`

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID.String())
	return scanRun(row)
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT 1`)
	return scanRun(row)
}

// ListRuns lists runs, newest first. A positive limit bounds the result.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Characters returns the records of a run in crawl order.
func (s *Store) Characters(runID uuid.UUID) ([]*character.Character, error) {
	rows, err := s.db.Query(`
		SELECT name, series, wiki_url, powers, archetype, matched_keywords,
		       dominant_colors, image_url, color, affiliations
		FROM characters
		WHERE run_id = ?
		ORDER BY position
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	records := []*character.Character{}
	for rows.Next() {
		var r character.Character
		var powers, archetype, keywords, color, affiliations sql.NullString
		var colors string

		err := rows.Scan(
			&r.Name, &r.Series, &r.WikiURL, &powers, &archetype, &keywords,
			&colors, &r.ImageURL, &color, &affiliations,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}

		r.Powers = nullString(powers)
		r.Archetype = nullString(archetype)
		r.Color = nullString(color)
		r.Affiliations = nullString(affiliations)
		r.DominantColors = character.ParseColors(colors)
		if keywords.Valid {
			if err := json.Unmarshal([]byte(keywords.String), &r.MatchedKeywords); err != nil {
				return nil, fmt.Errorf("failed to unmarshal matched keywords: %w", err)
			}
		}

		records = append(records, &r)
	}

	return records, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(runID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM runs WHERE run_id = ?", runID.String())
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRunNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var runIDStr, startedAtStr, finishedAtStr, sourcesJSON string

	err := row.Scan(
		&runIDStr, &run.Variant, &startedAtStr, &finishedAtStr,
		&run.Total, &run.Interrupted, &sourcesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.RunID, err = uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run_id: %w", err)
	}
	run.StartedAt = parseTime(startedAtStr)
	run.FinishedAt = parseTime(finishedAtStr)

	if err := json.Unmarshal([]byte(sourcesJSON), &run.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}

	return &run, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// timeLayout has fixed-width fractions so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
