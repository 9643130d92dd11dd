// Package standings provides a public API for embedding the scraper as a
// library.
//
// Parse individual pages you already have:
//
//	results, diags := standings.ParseResultsPage(html, contest, standings.Gold)
//
// Or scrape the whole archive:
//
//	client := standings.NewClient(
//	    standings.WithConcurrency(8),
//	    standings.WithSeasons("2011-12", "2023-24"),
//	)
//	dataset, diags, err := client.Scrape(ctx)
package standings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/fetcher"
	"github.com/herdstats/herdstats/internal/observability"
	"github.com/herdstats/herdstats/internal/parser"
	"github.com/herdstats/herdstats/internal/resolve"
	"github.com/herdstats/herdstats/internal/scrape"
	"github.com/herdstats/herdstats/internal/types"
)

// Re-exported domain types. The library's results are expressed entirely in
// these.
type (
	Season           = types.Season
	Division         = types.Division
	Month            = types.Month
	Contest          = types.Contest
	StudentResult    = types.StudentResult
	ContestResults   = types.ContestResults
	FinalistEntry    = types.FinalistEntry
	FinalistCategory = types.FinalistCategory
	SeasonFinalists  = types.SeasonFinalists
	HistoryEntry     = types.HistoryEntry
	CompetitionKind  = types.CompetitionKind
	Dataset          = types.Dataset
	Diagnostic       = types.Diagnostic
)

const (
	Bronze   = types.Bronze
	Silver   = types.Silver
	Gold     = types.Gold
	Platinum = types.Platinum

	IOI  = types.IOI
	EGOI = types.EGOI

	CategoryUnspecified = types.CategoryUnspecified
	CategoryFinalist    = types.CategoryFinalist
	CategoryEGOI        = types.CategoryEGOI
)

// NewSeason creates a Season from its ending calendar year.
func NewSeason(endYear int) Season { return types.NewSeason(endYear) }

// ParseSeason parses a season identifier in "2013-14" form.
func ParseSeason(s string) (Season, error) { return types.ParseSeason(s) }

// SeasonContests returns the contest slots a season scheduled.
func SeasonContests(season Season) []Contest { return resolve.SeasonContests(season) }

// SeasonDivisions returns the divisions held in a season.
func SeasonDivisions(season Season) []Division { return resolve.SeasonDivisions(season) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ParseResultsPage parses one contest results page. It never fails: pages
// that cannot be interpreted come back as empty results plus diagnostics.
func ParseResultsPage(html string, contest Contest, division Division) ([]StudentResult, []Diagnostic) {
	return parser.NewResultsParser(quietLogger()).Parse(html, contest, division)
}

// ParseFinalistsPage parses one season's camp finalist announcement page.
func ParseFinalistsPage(html string, season Season) ([]FinalistEntry, []Diagnostic) {
	return parser.NewFinalistsParser(quietLogger()).Parse(html, season)
}

// ParseHistoryPage parses the combined IOI/EGOI history page.
func ParseHistoryPage(html string) ([]HistoryEntry, []Diagnostic) {
	return parser.NewHistoryParser(quietLogger()).Parse(html)
}

// Client scrapes the live archive.
type Client struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*config.Config)

// WithConcurrency sets the number of concurrent fetch workers.
func WithConcurrency(n int) Option {
	return func(c *config.Config) { c.Scrape.Concurrency = n }
}

// WithBaseURL points the client at a different archive host, typically a
// mirror or a test server.
func WithBaseURL(base string) Option {
	return func(c *config.Config) { c.Scrape.BaseURL = base }
}

// WithSeasons restricts the scrape to an inclusive season range.
func WithSeasons(first, last string) Option {
	return func(c *config.Config) {
		if s, err := types.ParseSeason(first); err == nil {
			c.Scrape.FirstSeason = s.EndYear()
		}
		if s, err := types.ParseSeason(last); err == nil {
			c.Scrape.LastSeason = s.EndYear()
		}
	}
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Fetcher.UserAgent = ua }
}

// WithDelay sets the politeness delay between fetches per worker.
func WithDelay(d time.Duration) Option {
	return func(c *config.Config) { c.Scrape.PolitenessDelay = d }
}

// WithRetries sets the retry budget for transient fetch failures.
func WithRetries(n int) Option {
	return func(c *config.Config) { c.Scrape.MaxRetries = n }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &Client{cfg: cfg, logger: logger}
}

// Scrape crawls every page of the configured season range and returns the
// assembled dataset. Absent pages are skipped; pages that could not be
// parsed cleanly contribute diagnostics rather than errors.
func (c *Client) Scrape(ctx context.Context) (*Dataset, []Diagnostic, error) {
	f, err := fetcher.New(c.cfg, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	metrics := observability.NewMetrics(c.logger)
	return scrape.New(c.cfg, f, metrics, c.logger).Run(ctx)
}
