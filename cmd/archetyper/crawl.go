package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pevans/archetyper/crawl"
	"github.com/pevans/archetyper/dataset"
	"github.com/pevans/archetyper/discovery"
	"github.com/pevans/archetyper/fetch"
	"github.com/pevans/archetyper/logger"
	"github.com/pevans/archetyper/palette"
	"github.com/pevans/archetyper/scraper"
	"github.com/spf13/cobra"
)

func newCrawlCommand() *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Scrape every configured source and write the dataset",
		Long: `Crawl runs the configured sources in order. Sources whose listing page cannot
be fetched are skipped, as are character pages that fail. On interrupt the
records gathered so far are still written.`,
		Example: `  archetyper crawl
  archetyper crawl --coarse --workers 2
  archetyper crawl --source "Winx Club" --csv winx.csv --sqlite ""`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, only)
		},
	}

	cmd.Flags().StringSliceVar(&only, "source", nil, "crawl only the sources with these labels")
	cmd.Flags().String("variant", "", "keyword table: refined or coarse")
	cmd.Flags().Int("workers", 0, "character pages fetched concurrently (1-8)")
	cmd.Flags().Duration("min-interval", 0, "minimum delay between requests to one host")
	cmd.Flags().Duration("timeout", 0, "per-request timeout")
	cmd.Flags().String("user-agent", "", "User-Agent header sent with every request")
	cmd.Flags().Int("palette-size", 0, "dominant colours per character (1-5)")
	cmd.Flags().String("csv", "", "CSV output path (empty string disables)")
	cmd.Flags().String("sqlite", "", "SQLite run history path (empty string disables)")

	return cmd
}

func runCrawl(cmd *cobra.Command, only []string) error {
	cfg, log := appConfig, appLog

	sources, err := selectSources(cfg.Sources, only)
	if err != nil {
		return err
	}

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}

	client := fetch.New(cfg.FetchOptions(), log)
	s := discovery.NewScraper(client, palette.New(client, log), classifier, cfg.Extract, log)

	log.Info("Starting crawl",
		logger.String("variant", classifier.Table().Name),
		logger.Strings("sources", sourceLabels(sources)),
		logger.Int("workers", cfg.Crawl.Workers),
	)

	summary, runErr := crawl.New(s, cfg.CrawlConfig(), log).Run(cmd.Context(), sources)
	interrupted := runErr != nil

	// A partial dataset is still written after an interrupt.
	if cfg.Output.CSV != "" {
		if err := dataset.SaveCSV(cfg.Output.CSV, summary.Records); err != nil {
			return err
		}
		log.Info("Saved dataset", logger.String("path", cfg.Output.CSV), logger.Int("characters", summary.Total()))
	}

	if cfg.Output.SQLite != "" {
		store, err := dataset.NewStore(cfg.Output.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.SaveRun(dataset.NewRun(summary, classifier.Table().Name, interrupted), summary.Records)
		if err != nil {
			return err
		}
		log.Info("Saved run",
			logger.String("run_id", run.RunID.String()),
			logger.String("path", cfg.Output.SQLite),
			logger.Bool("interrupted", run.Interrupted),
		)
	}

	printCrawlSummary(cmd.OutOrStdout(), summary)

	if runErr != nil {
		return fmt.Errorf("crawl interrupted: %w", runErr)
	}
	return nil
}

// selectSources keeps the sources named in only, in catalog order.
func selectSources(all []scraper.SourceConfig, only []string) ([]scraper.SourceConfig, error) {
	if len(only) == 0 {
		return all, nil
	}

	for _, label := range only {
		if !slices.ContainsFunc(all, func(s scraper.SourceConfig) bool { return s.Label == label }) {
			return nil, fmt.Errorf("unknown source: %s", label)
		}
	}

	selected := make([]scraper.SourceConfig, 0, len(only))
	for _, src := range all {
		if slices.Contains(only, src.Label) {
			selected = append(selected, src)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("no sources selected")
	}
	return selected, nil
}

func sourceLabels(sources []scraper.SourceConfig) []string {
	labels := make([]string, 0, len(sources))
	for _, s := range sources {
		labels = append(labels, s.Label)
	}
	return labels
}
