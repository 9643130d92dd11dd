// Package scrape drives a full archive crawl: it enumerates every known
// results, finalists, and history page, fetches them through a bounded
// worker pool, hands each body to the matching parser, and assembles the
// output dataset in deterministic order.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/fetcher"
	"github.com/herdstats/herdstats/internal/observability"
	"github.com/herdstats/herdstats/internal/parser"
	"github.com/herdstats/herdstats/internal/resolve"
	"github.com/herdstats/herdstats/internal/types"
)

// job is one page to fetch and parse.
type job struct {
	kind     resolve.PageKind
	url      string
	contest  types.Contest
	division types.Division
	season   types.Season
}

func (j job) page() string {
	switch j.kind {
	case resolve.PageResults:
		return j.contest.String() + " " + j.division.String() + " results"
	case resolve.PageFinalists:
		return j.season.String() + " finalists"
	default:
		return "history"
	}
}

// Scraper orchestrates one full crawl of the archive.
type Scraper struct {
	cfg       *config.Config
	fetcher   fetcher.Fetcher
	results   *parser.ResultsParser
	finalists *parser.FinalistsParser
	history   *parser.HistoryParser
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu      sync.Mutex
	dataset types.Dataset
	diags   []types.Diagnostic
}

// New creates a Scraper using the given fetcher.
func New(cfg *config.Config, f fetcher.Fetcher, metrics *observability.Metrics, logger *slog.Logger) *Scraper {
	return &Scraper{
		cfg:       cfg,
		fetcher:   f,
		results:   parser.NewResultsParser(logger),
		finalists: parser.NewFinalistsParser(logger),
		history:   parser.NewHistoryParser(logger),
		metrics:   metrics,
		logger:    logger.With("component", "scraper"),
	}
}

// Run crawls every page of the configured season range and returns the
// assembled dataset together with all parse diagnostics. Absent pages and
// failed fetches never abort the run; the only error Run returns is
// context cancellation.
func (s *Scraper) Run(ctx context.Context) (*types.Dataset, []types.Diagnostic, error) {
	jobs := s.buildJobs()

	s.logger.Info("scrape starting",
		"pages", len(jobs),
		"concurrency", s.cfg.Scrape.Concurrency,
	)
	start := time.Now()

	jobChan := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Scrape.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.metrics.ActiveWorkers.Add(1)
			defer s.metrics.ActiveWorkers.Add(-1)
			for j := range jobChan {
				s.runJob(ctx, j)
				if delay := s.cfg.Scrape.PolitenessDelay; delay > 0 {
					select {
					case <-time.After(delay):
					case <-ctx.Done():
					}
				}
			}
		}()
	}

feed:
	for _, j := range jobs {
		select {
		case jobChan <- j:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortDataset()

	s.logger.Info("scrape complete",
		"contests", len(s.dataset.Contests),
		"camps", len(s.dataset.Camps),
		"history_entries", len(s.dataset.History),
		"diagnostics", len(s.diags),
		"elapsed", time.Since(start),
	)

	ds := s.dataset
	return &ds, s.diags, nil
}

// buildJobs enumerates every page of the configured season range.
func (s *Scraper) buildJobs() []job {
	base := s.cfg.Scrape.BaseURL
	first := s.cfg.Scrape.FirstSeason
	last := s.cfg.Scrape.LastSeason
	if last == 0 {
		last = currentSeason()
	}

	var jobs []job
	for end := first; end <= last; end++ {
		season := types.NewSeason(end)

		if !s.cfg.Scrape.SkipContests {
			for _, contest := range resolve.SeasonContests(season) {
				for _, division := range resolve.SeasonDivisions(season) {
					jobs = append(jobs, job{
						kind:     resolve.PageResults,
						url:      ResultsURL(base, contest, division),
						contest:  contest,
						division: division,
						season:   season,
					})
				}
			}
		}

		if !s.cfg.Scrape.SkipFinalists {
			jobs = append(jobs, job{
				kind:   resolve.PageFinalists,
				url:    FinalistsURL(base, season),
				season: season,
			})
		}
	}

	if !s.cfg.Scrape.SkipHistory {
		jobs = append(jobs, job{kind: resolve.PageHistory, url: HistoryURL(base)})
	}
	return jobs
}

// runJob fetches and parses one page. All failure modes degrade to logs,
// metrics, and diagnostics.
func (s *Scraper) runJob(ctx context.Context, j job) {
	resp, err := s.fetchWithRetry(ctx, j.url)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.metrics.PagesFailed.Add(1)
		s.logger.Warn("page fetch failed", "url", j.url, "error", err)
		s.addDiagnostic(types.Diagnostic{
			Page: j.page(), Row: types.NoPos, Col: types.NoPos,
			Reason: "page could not be fetched: " + err.Error(),
		})
		return
	}
	if resp.Missing() {
		// Expected for seasons whose pages were never published.
		s.metrics.PagesMissing.Add(1)
		s.logger.Debug("page absent", "url", j.url, "status", resp.StatusCode)
		return
	}
	s.metrics.PagesFetched.Add(1)
	s.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	body := string(resp.Body)
	switch j.kind {
	case resolve.PageResults:
		results, diags := s.results.Parse(body, j.contest, j.division)
		s.metrics.ResultRows.Add(int64(len(results)))
		s.addContest(types.ContestResults{
			Contest:  j.contest,
			Division: j.division,
			Results:  results,
		}, diags)
	case resolve.PageFinalists:
		entries, diags := s.finalists.Parse(body, j.season)
		s.metrics.FinalistRows.Add(int64(len(entries)))
		s.addCamp(types.SeasonFinalists{
			Season:    j.season,
			Finalists: entries,
		}, diags)
	case resolve.PageHistory:
		entries, diags := s.history.Parse(body)
		s.metrics.HistoryEntries.Add(int64(len(entries)))
		s.addHistory(entries, diags)
	}
}

// fetchWithRetry retries retryable fetch failures up to the configured
// attempt budget, honoring server-provided back-off.
func (s *Scraper) fetchWithRetry(ctx context.Context, url string) (*fetcher.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.Scrape.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.FetchRetries.Add(1)
			delay := s.cfg.Scrape.RetryDelay
			var fe *types.FetchError
			if errors.As(lastErr, &fe) && fe.RetryAfter > delay {
				delay = fe.RetryAfter
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := s.fetcher.Fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var fe *types.FetchError
		if !errors.As(err, &fe) || !fe.Retryable {
			return nil, err
		}
		s.logger.Debug("retrying fetch", "url", url, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (s *Scraper) addContest(cr types.ContestResults, diags []types.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset.Contests = append(s.dataset.Contests, cr)
	s.recordDiags(diags)
}

func (s *Scraper) addCamp(sf types.SeasonFinalists, diags []types.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset.Camps = append(s.dataset.Camps, sf)
	s.recordDiags(diags)
}

func (s *Scraper) addHistory(entries []types.HistoryEntry, diags []types.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset.History = append(s.dataset.History, entries...)
	s.recordDiags(diags)
}

func (s *Scraper) addDiagnostic(d types.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

// recordDiags must be called with s.mu held.
func (s *Scraper) recordDiags(diags []types.Diagnostic) {
	s.diags = append(s.diags, diags...)
	s.metrics.Diagnostics.Add(int64(len(diags)))
	for _, d := range diags {
		s.logger.Warn("parse diagnostic", "page", d.Page, "detail", d.String())
	}
}

// sortDataset puts concurrently collected pages into deterministic order.
// Must be called with s.mu held.
func (s *Scraper) sortDataset() {
	sort.SliceStable(s.dataset.Contests, func(i, k int) bool {
		a, b := s.dataset.Contests[i], s.dataset.Contests[k]
		if c := a.Contest.Season.Compare(b.Contest.Season); c != 0 {
			return c < 0
		}
		if a.Contest.Slot != b.Contest.Slot {
			return a.Contest.Slot < b.Contest.Slot
		}
		return a.Division < b.Division
	})
	sort.SliceStable(s.dataset.Camps, func(i, k int) bool {
		return s.dataset.Camps[i].Season.Before(s.dataset.Camps[k].Season)
	})
	sort.SliceStable(s.dataset.History, func(i, k int) bool {
		a, b := s.dataset.History[i], s.dataset.History[k]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Year < b.Year
	})
}

// currentSeason returns the ending year of the season in progress. A new
// season starts with the November/December contests, so from August on the
// next calendar year's season is the current one.
func currentSeason() int {
	now := time.Now()
	if now.Month() >= time.August {
		return now.Year() + 1
	}
	return now.Year()
}
