package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/archetyper/config"
	"github.com/pevans/archetyper/dataset"
	"github.com/pevans/archetyper/logger"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var addr, from string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset read API",
		Long: `Serve exposes the dataset over HTTP under /api/v1: characters with series,
archetype and name filters, archetype statistics, the configured sources and
an ad-hoc classify endpoint. With --from sqlite the latest stored run is
served and run history routes are added.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, from)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVar(&from, "from", "csv", "dataset to serve: csv or sqlite")
	cmd.Flags().String("csv", "", "CSV dataset path")
	cmd.Flags().String("sqlite", "", "SQLite run history path")

	return cmd
}

func runServe(ctx context.Context, addr, from string) error {
	cfg, log := appConfig, appLog

	var source dataset.Source
	var store *dataset.Store

	switch from {
	case "csv":
		source = dataset.CSVSource{Path: cfg.Output.CSV}
	case "sqlite":
		var err error
		store, err = dataset.NewStore(cfg.Output.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()
		source = dataset.StoreSource{Store: store}
	default:
		return fmt.Errorf("unknown dataset %q: must be csv or sqlite", from)
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := dataset.NewAPIServer(source, store, log).SetupRouter()

	catalog, err := config.NewCatalogAPIServer(cfg)
	if err != nil {
		return err
	}
	catalog.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", logger.String("addr", "http://"+addr+"/api/v1"), logger.String("from", from))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
