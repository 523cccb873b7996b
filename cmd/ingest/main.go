package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"stock-ticker-be/internal/config"
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/pkg/database"
	"stock-ticker-be/pkg/ingest"

	"github.com/spf13/cobra"
)

var (
	cacheDir    string
	refresh     bool
	dryRun      bool
	batchSize   int
	concurrency int
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the stock catalog from Financial Modeling Prep",
		Long: `Fetches the full instrument list, groups it by exchange, assigns every
exchange a country and replaces the stock_list table in one transaction.
Responses are cached on disk; pass --refresh to fetch them again.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().StringVar(&cacheDir, "cache-dir", cfg.Ingest.CacheDir, "directory for cached API responses")
	root.Flags().BoolVar(&refresh, "refresh", false, "ignore cached responses")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "classify and print a summary without writing to the database")
	root.Flags().IntVar(&batchSize, "batch-size", cfg.Ingest.BatchSize, "rows per insert batch")
	root.Flags().IntVar(&concurrency, "concurrency", 4, "parallel exchange sample lookups")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Ingest.FMPAPIKey == "" {
		return fmt.Errorf("FMP_API_KEY is not set")
	}
	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	started := time.Now()
	client := ingest.NewClient(cfg.Ingest.FMPBaseURL, cfg.Ingest.FMPAPIKey, cacheDir, cfg.Ingest.RequestsPerSecond)
	client.Refresh = refresh

	instruments, err := client.StockList(ctx)
	if err != nil {
		return err
	}
	groups := ingest.GroupByExchange(instruments)
	log.Info("ingest", "Fetched instrument list", map[string]interface{}{
		"instruments": len(instruments),
		"exchanges":   len(groups),
	})

	classes, err := ingest.NewClassifier(client, concurrency, log).Classify(ctx, groups)
	if err != nil {
		return err
	}

	var summary ingest.Summary
	if dryRun {
		_, _, summary = ingest.Plan(groups, classes)
	} else {
		if cfg.Database.Connection == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is not set")
		}
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		loader := ingest.NewLoader(unitofwork.NewRepositoryFactory(db), batchSize, log)
		if summary, err = loader.Load(ctx, groups, classes); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Printf("done in %s (dry run: %t)\n", time.Since(started).Round(time.Millisecond), dryRun)
	return nil
}
