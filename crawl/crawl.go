// Package crawl runs a full scrape: every configured source in order, a
// bounded number of detail pages in flight per source, records aggregated in
// discovery order.
package crawl

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/logger"
	"github.com/pevans/archetyper/scraper"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers is the number of detail pages fetched concurrently.
	DefaultWorkers = 4
	// MaxWorkers bounds the fan-out regardless of configuration.
	MaxWorkers = 8
)

// Scraper discovers links for a source and scrapes single detail pages.
// *discovery.Scraper satisfies it.
type Scraper interface {
	DiscoverLinks(ctx context.Context, src scraper.SourceConfig) ([]string, error)
	ScrapeCharacter(ctx context.Context, pageURL, series string) (*character.Character, error)
}

// Config holds orchestrator configuration.
type Config struct {
	Workers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{Workers: DefaultWorkers}
}

// SourceSummary reports the outcome of one source.
type SourceSummary struct {
	Label   string
	Links   int
	Scraped int
	Failed  int
	// Skipped counts links never requested because the run was cancelled.
	Skipped int
	// Err is set when link discovery failed and the source was skipped.
	Err error
}

// Summary is the outcome of a run. Records holds one entry per successfully
// scraped page, grouped by source in configured order and within a source in
// discovery order.
type Summary struct {
	Records  []*character.Character
	Sources  []SourceSummary
	Started  time.Time
	Finished time.Time
}

// Total returns the number of records.
func (s Summary) Total() int {
	return len(s.Records)
}

// Orchestrator drives the crawl.
type Orchestrator struct {
	scraper Scraper
	workers int
	log     logger.Logger
}

// New creates an orchestrator. Worker counts outside 1-8 are clamped.
func New(s Scraper, config *Config, log logger.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	workers := config.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	return &Orchestrator{scraper: s, workers: workers, log: log}
}

// Run crawls sources in order. A source whose discovery fails is skipped, and
// so is a link whose page cannot be fetched; neither is an error. When ctx is
// cancelled Run stops launching work and returns the records gathered so far
// together with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, sources []scraper.SourceConfig) (Summary, error) {
	summary := Summary{
		Records: []*character.Character{},
		Sources: []SourceSummary{},
		Started: time.Now(),
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		records, stats := o.crawlSource(ctx, src)
		summary.Records = append(summary.Records, records...)
		summary.Sources = append(summary.Sources, stats)
	}

	summary.Finished = time.Now()

	if err := ctx.Err(); err != nil {
		o.log.Warn("Crawl interrupted", logger.Int("characters", summary.Total()), logger.Err(err))
		return summary, err
	}

	o.log.Info("Crawl finished",
		logger.Int("characters", summary.Total()),
		logger.Int("sources", len(summary.Sources)),
		logger.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)

	return summary, nil
}

// crawlSource discovers and scrapes one source.
func (o *Orchestrator) crawlSource(ctx context.Context, src scraper.SourceConfig) ([]*character.Character, SourceSummary) {
	stats := SourceSummary{Label: src.Label}
	log := o.log.With(logger.String("source", src.Label))

	log.Info("Processing source", logger.String("url", src.URL))

	links, err := o.scraper.DiscoverLinks(ctx, src)
	if err != nil {
		log.Error("Failed to discover links, skipping source", logger.Err(err))
		stats.Err = err
		return nil, stats
	}

	stats.Links = len(links)
	log.Info("Found character links", logger.Int("count", len(links)))

	// Each worker owns one slot, so no locking is needed and the output
	// keeps discovery order.
	results := make([]*character.Character, len(links))
	var attempted atomic.Int32

	var g errgroup.Group
	g.SetLimit(o.workers)

	for i, link := range links {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			// A slot may free up only after cancellation.
			if ctx.Err() != nil {
				return nil
			}
			attempted.Add(1)

			log.Info("Scraping character",
				logger.String("progress", fmt.Sprintf("%d/%d", i+1, len(links))),
				logger.String("url", link),
			)

			record, err := o.scraper.ScrapeCharacter(ctx, link, src.Label)
			if err != nil {
				log.Warn("Failed to scrape character", logger.String("url", link), logger.Err(err))
				return nil
			}

			results[i] = record
			return nil
		})
	}

	// Workers never return errors; failures are logged and skipped.
	_ = g.Wait()

	records := make([]*character.Character, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, r)
		}
	}

	stats.Scraped = len(records)
	stats.Failed = int(attempted.Load()) - len(records)
	stats.Skipped = len(links) - int(attempted.Load())

	return records, stats
}
