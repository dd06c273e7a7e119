package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/pevans/archetyper/config"
	"github.com/pevans/archetyper/dataset"
	"github.com/spf13/cobra"
)

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured wiki sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			printSources(cmd.OutOrStdout(), appConfig.Sources)
			return nil
		},
	}
}

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in catalog to a file for editing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg := config.Default()
			if coarse {
				cfg = config.CoarseDefault()
			}
			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newRunsCommand() *cobra.Command {
	var limit int
	var remove string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or delete stored crawl runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := dataset.NewStore(appConfig.Output.SQLite)
			if err != nil {
				return err
			}
			defer store.Close()

			if remove != "" {
				id, err := uuid.Parse(remove)
				if err != nil {
					return fmt.Errorf("invalid run id: %w", err)
				}
				if err := store.DeleteRun(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
				return nil
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().StringVar(&remove, "delete", "", "delete the run with this ID")
	cmd.Flags().String("sqlite", "", "SQLite run history path")
	return cmd
}
