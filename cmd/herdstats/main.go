package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/fetcher"
	"github.com/herdstats/herdstats/internal/observability"
	"github.com/herdstats/herdstats/internal/scrape"
	"github.com/herdstats/herdstats/internal/storage"
	"github.com/herdstats/herdstats/internal/types"
)

var (
	cfgFile     string
	verbose     bool
	outputPath  string
	outputType  string
	baseURL     string
	concurrent  int
	maxRetries  int
	firstSeason string
	lastSeason  string
	skipParts   = map[string]*bool{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "herdstats",
		Short: "herdstats — USACO historical results scraper",
		Long: `herdstats crawls the USACO website's historical archive and turns it
into a single machine-readable dataset.

It covers:
  • every contest results page since the 2011-12 season
  • every training camp finalist announcement
  • the combined IOI/EGOI team history page

Pages drifted in format across a decade; herdstats parses tolerantly,
records what it could not interpret as diagnostics, and never invents
data that is not printed on the page.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the full results archive",
		Long:  "Fetch and parse every known results, finalists, and history page, then write the assembled dataset.",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", `output file path ("-" for stdout)`)
	cmd.Flags().StringVarP(&outputType, "storage", "s", "", "storage backend: json, mongo")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "archive base URL")
	cmd.Flags().IntVarP(&concurrent, "concurrency", "n", 0, "number of concurrent fetch workers")
	cmd.Flags().IntVar(&maxRetries, "max-retries", -1, "max retries per failed fetch (-1 = config default)")
	cmd.Flags().StringVar(&firstSeason, "first-season", "", `earliest season to scrape, e.g. "2011-12"`)
	cmd.Flags().StringVar(&lastSeason, "last-season", "", `latest season to scrape, e.g. "2023-24"`)
	for _, part := range []string{"contests", "finalists", "history"} {
		skipParts[part] = cmd.Flags().Bool("skip-"+part, false, "skip "+part+" pages")
	}

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(&cfg.Logging)

	logger.Info("starting scrape",
		"base_url", cfg.Scrape.BaseURL,
		"first_season", cfg.Scrape.FirstSeason,
		"concurrency", cfg.Scrape.Concurrency,
		"storage", cfg.Storage.Type,
	)

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	start := time.Now()
	scraper := scrape.New(cfg, f, metrics, logger)
	dataset, diags, err := scraper.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	if err := store.Store(dataset, diags); err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}

	elapsed := time.Since(start)
	stats := metrics.Snapshot()

	logger.Info("scrape finished",
		"elapsed", elapsed,
		"pages", stats["pages_fetched"],
		"missing", stats["pages_missing"],
		"failed", stats["pages_failed"],
		"diagnostics", stats["diagnostics"],
	)

	fmt.Fprintf(os.Stderr, "\nScrape complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "   Pages:       %v fetched, %v absent, %v failed\n",
		stats["pages_fetched"], stats["pages_missing"], stats["pages_failed"])
	fmt.Fprintf(os.Stderr, "   Records:     %v results, %v finalists, %v history entries\n",
		stats["result_rows"], stats["finalist_rows"], stats["history_entries"])
	fmt.Fprintf(os.Stderr, "   Diagnostics: %v\n", stats["diagnostics"])
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("herdstats %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Scrape.BaseURL)
			fmt.Printf("  First Season:      %d\n", cfg.Scrape.FirstSeason)
			fmt.Printf("  Last Season:       %d (0 = current)\n", cfg.Scrape.LastSeason)
			fmt.Printf("  Concurrency:       %d\n", cfg.Scrape.Concurrency)
			fmt.Printf("  Max Retries:       %d\n", cfg.Scrape.MaxRetries)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Scrape.PolitenessDelay)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  User-Agent:        %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config. The -v
// flag wins over the configured level.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if baseURL != "" {
		cfg.Scrape.BaseURL = baseURL
	}
	if concurrent > 0 {
		cfg.Scrape.Concurrency = concurrent
	}
	if maxRetries >= 0 {
		cfg.Scrape.MaxRetries = maxRetries
	}
	if firstSeason != "" {
		season, err := types.ParseSeason(firstSeason)
		if err != nil {
			return fmt.Errorf("invalid --first-season: %w", err)
		}
		cfg.Scrape.FirstSeason = season.EndYear()
	}
	if lastSeason != "" {
		season, err := types.ParseSeason(lastSeason)
		if err != nil {
			return fmt.Errorf("invalid --last-season: %w", err)
		}
		cfg.Scrape.LastSeason = season.EndYear()
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = outputType
	}
	if *skipParts["contests"] {
		cfg.Scrape.SkipContests = true
	}
	if *skipParts["finalists"] {
		cfg.Scrape.SkipFinalists = true
	}
	if *skipParts["history"] {
		cfg.Scrape.SkipHistory = true
	}
	return nil
}
