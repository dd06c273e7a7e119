package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pevans/archetyper/config"
	"github.com/pevans/archetyper/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultConfigFile is read when present and no --config flag is given.
const defaultConfigFile = "archetyper.yaml"

var version = "dev"

var (
	// cfgFile holds the path to the catalog file.
	cfgFile string
	debug   bool
	coarse  bool

	// Populated by loadApp before any subcommand runs.
	appConfig *config.Config
	appLog    logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "archetyper",
	Short: "Scrape character wikis and infer character archetypes",
	Long: `archetyper crawls fandom wiki listing pages, scrapes every linked character
page, infers an archetype from the page text and extracts a colour palette from
the character image. Results go to a CSV file and a SQLite run history.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	// Load .env early so ARCHETYPER_* variables are visible to viper
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"catalog file (default is ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&coarse, "coarse", false,
		"start from the coarse six-category catalog instead of the refined one")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	viper.SetEnvPrefix("ARCHETYPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		newCrawlCommand(),
		newServeCommand(),
		newShowCommand(),
		newSourcesCommand(),
		newInitCommand(),
		newRunsCommand(),
		newVersionCommand(),
	)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "archetyper version %s\n", version)
		},
	}
}

// loadApp resolves the catalog and builds the logger. Precedence is flags,
// then ARCHETYPER_* environment variables, then the catalog file, then the
// built-in defaults.
func loadApp(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := loadCatalog()
	if err != nil {
		return err
	}

	applyOverrides(cfg)
	if debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig = cfg
	appLog = log
	return nil
}

func loadCatalog() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = viper.GetString("config")
	}

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", defaultConfigFile, err)
		}
	}

	if path == "" {
		if coarse {
			return config.CoarseDefault(), nil
		}
		return config.Default(), nil
	}

	return config.LoadFile(path)
}

// applyOverrides copies every flag or environment value that was set onto
// the catalog.
func applyOverrides(cfg *config.Config) {
	if coarse {
		cfg.Crawl.Variant = "coarse"
	}
	if viper.IsSet("crawl.variant") {
		cfg.Crawl.Variant = viper.GetString("crawl.variant")
	}
	if viper.IsSet("crawl.workers") {
		cfg.Crawl.Workers = viper.GetInt("crawl.workers")
	}
	if viper.IsSet("crawl.min_interval") {
		cfg.Crawl.MinInterval = viper.GetDuration("crawl.min_interval")
	}
	if viper.IsSet("crawl.timeout") {
		cfg.Crawl.Timeout = viper.GetDuration("crawl.timeout")
	}
	if viper.IsSet("crawl.user_agent") {
		cfg.Crawl.UserAgent = viper.GetString("crawl.user_agent")
	}
	if viper.IsSet("extract.palette_size") {
		cfg.Extract.PaletteSize = viper.GetInt("extract.palette_size")
	}
	if viper.IsSet("output.csv") {
		cfg.Output.CSV = viper.GetString("output.csv")
	}
	if viper.IsSet("output.sqlite") {
		cfg.Output.SQLite = viper.GetString("output.sqlite")
	}
	if viper.IsSet("log.level") {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		cfg.Log.Format = viper.GetString("log.format")
	}
}

// flagKeys maps command-line flags to catalog keys. Flags are bound when
// their command runs, since several commands share a flag name.
var flagKeys = map[string]string{
	"variant":      "crawl.variant",
	"workers":      "crawl.workers",
	"min-interval": "crawl.min_interval",
	"timeout":      "crawl.timeout",
	"user-agent":   "crawl.user_agent",
	"palette-size": "extract.palette_size",
	"csv":          "output.csv",
	"sqlite":       "output.sqlite",
	"log-format":   "log.format",
}
