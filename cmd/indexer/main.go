// Command indexer pushes the bundled overall dataset into the semantic
// search index. Run it after changing the data files or rotating the index.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/dataset"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/observability"
	"github.com/haalarikone/haku-api/internal/semantic"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall indexing timeout")
	flag.Parse()

	if err := run(*configPath, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	store := dataset.NewStore(cfg.Dataset.Dir, logger)
	if err := store.Preload(); err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	client, err := semantic.NewClient(cfg.Semantic, cfg.Search, logger)
	if err != nil {
		return fmt.Errorf("connecting to semantic index: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, locale := range models.Locales() {
		records, err := store.Records(locale)
		if err != nil {
			return fmt.Errorf("reading %s records: %w", locale, err)
		}
		if err := client.BulkIndex(ctx, locale, records); err != nil {
			return fmt.Errorf("indexing %s records: %w", locale, err)
		}
		logger.Info("locale indexed",
			zap.String("locale", string(locale)),
			zap.Int("records", len(records)),
		)
	}

	logger.Info("indexing complete")
	return nil
}
