package main

import (
	"errors"
	"fmt"

	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/dataset"
	"github.com/spf13/cobra"
)

type showOptions struct {
	filter   dataset.Filter
	from     string
	stats    bool
	asJSON   bool
	keywords int
}

func newShowCommand() *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the dataset or its archetype statistics",
		Example: `  archetyper show --series "Winx Club"
  archetyper show --archetype Leader --archetype Heart --json
  archetyper show --stats --from sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.filter.Series, "series", nil, "only characters of these series")
	cmd.Flags().StringSliceVar(&opts.filter.Archetypes, "archetype", nil, "only characters with these archetypes")
	cmd.Flags().StringVar(&opts.filter.Name, "name", "", "only characters whose name contains this text")
	cmd.Flags().StringVar(&opts.from, "from", "csv", "dataset to read: csv or sqlite")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print archetype distribution, diversity and keywords")
	cmd.Flags().IntVar(&opts.keywords, "keywords", 10, "number of top keywords with --stats")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().String("csv", "", "CSV dataset path")
	cmd.Flags().String("sqlite", "", "SQLite run history path")

	return cmd
}

func runShow(cmd *cobra.Command, opts showOptions) error {
	records, err := loadRecords(opts.from)
	if err != nil {
		return err
	}
	records = opts.filter.Apply(records)
	out := cmd.OutOrStdout()

	if opts.stats {
		if opts.asJSON {
			return printJSON(out, map[string]any{
				"distribution": dataset.Distribution(records),
				"diversity":    dataset.Diversity(records),
				"keywords":     dataset.TopKeywords(records, opts.keywords),
			})
		}
		printStats(out, records, opts.keywords)
		return nil
	}

	if opts.asJSON {
		return printJSON(out, records)
	}
	printCharacters(out, records)
	return nil
}

func loadRecords(from string) ([]*character.Character, error) {
	switch from {
	case "csv":
		return dataset.LoadCSV(appConfig.Output.CSV)
	case "sqlite":
		store, err := dataset.NewStore(appConfig.Output.SQLite)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		records, err := dataset.StoreSource{Store: store}.Load()
		if errors.Is(err, dataset.ErrRunNotFound) {
			return []*character.Character{}, nil
		}
		return records, err
	default:
		return nil, fmt.Errorf("unknown dataset %q: must be csv or sqlite", from)
	}
}
