package scrape

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/fetcher"
	"github.com/herdstats/herdstats/internal/observability"
	"github.com/herdstats/herdstats/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// stubFetcher serves canned bodies keyed by URL and 404s everything else.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
	fail    map[string]int // url -> remaining retryable failures
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*fetcher.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if n := f.fail[url]; n > 0 {
		f.fail[url] = n - 1
		return nil, &types.FetchError{URL: url, Err: errors.New("connection reset"), Retryable: true}
	}
	body, ok := f.pages[url]
	if !ok {
		return &fetcher.Response{URL: url, StatusCode: 404}, nil
	}
	return &fetcher.Response{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *stubFetcher) Close() error { return nil }
func (f *stubFetcher) Type() string { return "stub" }

const resultsPage = `<html><body><table>
<tr><th>Country</th><th>Year</th><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th></tr>
<tr><td>USA</td><td>2014</td><td>Alice Example</td><td>333</td><td>333</td><td>334</td><td>1000</td></tr>
<tr><td>CAN</td><td>2015</td><td>Bob Sample</td><td>100</td><td>200</td><td>300</td><td>600</td></tr>
</table></body></html>`

const finalistsPage = `<html><body>
<h2>2011-2012 USACO Finalists</h2>
<table>
<tr><td>Year</td><td>Name</td><td>School</td><td>State</td></tr>
<tr><td>2012</td><td>Alice Example</td><td>Example High</td><td>NY</td></tr>
</table></body></html>`

const historyPage = `<html><body><div class="content">
<div><h2>IOI History</h2>
<div class="historypanel"><b>2012</b><br>
<img src="medal_gold.png"> Alice Example<br>
</div></div>
</div></body></html>`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.BaseURL = "https://usaco.org"
	cfg.Scrape.FirstSeason = 2012
	cfg.Scrape.LastSeason = 2012
	cfg.Scrape.Concurrency = 2
	cfg.Scrape.MaxRetries = 2
	cfg.Scrape.RetryDelay = time.Millisecond
	cfg.Scrape.PolitenessDelay = 0
	return cfg
}

func newTestScraper(cfg *config.Config, f fetcher.Fetcher) *Scraper {
	return New(cfg, f, observability.NewMetrics(testLogger), testLogger)
}

func TestURLBuilders(t *testing.T) {
	season := types.NewSeason(2024)
	contests := []types.Contest{}
	for _, c := range []struct {
		month types.Month
		year  int
	}{{types.December, 2023}, {types.Open, 2024}} {
		contests = append(contests, types.Contest{Season: season, Month: c.month, Year: c.year})
	}

	got := ResultsURL("https://usaco.org/", contests[0], types.Bronze)
	want := "https://usaco.org/current/data/dec23_bronze_results.html"
	if got != want {
		t.Errorf("ResultsURL = %q, want %q", got, want)
	}

	got = ResultsURL("https://usaco.org", contests[1], types.Platinum)
	want = "https://usaco.org/current/data/open24_platinum_results.html"
	if got != want {
		t.Errorf("ResultsURL = %q, want %q", got, want)
	}

	got = FinalistsURL("https://usaco.org", season)
	want = "https://usaco.org/index.php?page=finalists24"
	if got != want {
		t.Errorf("FinalistsURL = %q, want %q", got, want)
	}

	got = HistoryURL("https://usaco.org")
	want = "https://usaco.org/index.php?page=history"
	if got != want {
		t.Errorf("HistoryURL = %q, want %q", got, want)
	}
}

func TestBuildJobsEnumeratesSeason(t *testing.T) {
	s := newTestScraper(testConfig(), &stubFetcher{})
	jobs := s.buildJobs()

	// 2011-12: six contests, three divisions, one finalists page, history.
	want := 6*3 + 1 + 1
	if len(jobs) != want {
		t.Fatalf("expected %d jobs, got %d", want, len(jobs))
	}
	for _, j := range jobs {
		if strings.Contains(j.url, "platinum") {
			t.Errorf("platinum page enumerated before its introduction: %s", j.url)
		}
	}
}

func TestRunAssemblesDataset(t *testing.T) {
	cfg := testConfig()
	season := types.NewSeason(2012)
	f := &stubFetcher{pages: map[string]string{
		"https://usaco.org/current/data/nov11_bronze_results.html": resultsPage,
		"https://usaco.org/current/data/open12_gold_results.html":  resultsPage,
		"https://usaco.org/index.php?page=finalists12":             finalistsPage,
		"https://usaco.org/index.php?page=history":                 historyPage,
	}}

	ds, diags, err := newTestScraper(cfg, f).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(ds.Contests) != 2 {
		t.Fatalf("expected 2 contest pages, got %d", len(ds.Contests))
	}
	// Deterministic order: November slot precedes Open.
	if ds.Contests[0].Contest.Month != types.November {
		t.Errorf("expected November first, got %s", ds.Contests[0].Contest)
	}
	if got := len(ds.Contests[0].Results); got != 2 {
		t.Errorf("expected 2 result rows, got %d", got)
	}

	if len(ds.Camps) != 1 || ds.Camps[0].Season != season {
		t.Fatalf("unexpected camps: %+v", ds.Camps)
	}
	if len(ds.Camps[0].Finalists) != 1 {
		t.Errorf("expected 1 finalist, got %d", len(ds.Camps[0].Finalists))
	}

	if len(ds.History) != 1 || ds.History[0].Result != "gold" {
		t.Fatalf("unexpected history: %+v", ds.History)
	}

	// Absent pages are silently skipped, not diagnosed.
	for _, d := range diags {
		if strings.Contains(d.Reason, "fetched") {
			t.Errorf("absent page produced a fetch diagnostic: %s", d)
		}
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Scrape.SkipContests = true
	cfg.Scrape.SkipFinalists = true
	url := "https://usaco.org/index.php?page=history"
	f := &stubFetcher{
		pages: map[string]string{url: historyPage},
		fail:  map[string]int{url: 2},
	}

	ds, _, err := newTestScraper(cfg, f).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ds.History) != 1 {
		t.Fatalf("expected history parsed after retries, got %d entries", len(ds.History))
	}
	if len(f.fetched) != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", len(f.fetched))
	}
}

func TestRunExhaustedRetriesProduceDiagnostic(t *testing.T) {
	cfg := testConfig()
	cfg.Scrape.SkipContests = true
	cfg.Scrape.SkipFinalists = true
	url := "https://usaco.org/index.php?page=history"
	f := &stubFetcher{fail: map[string]int{url: 10}}

	ds, diags, err := newTestScraper(cfg, f).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ds.History) != 0 {
		t.Errorf("expected no history entries, got %d", len(ds.History))
	}
	found := false
	for _, d := range diags {
		if d.Page == "history" && strings.Contains(d.Reason, "could not be fetched") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fetch-failure diagnostic, got %v", diags)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestScraper(testConfig(), &stubFetcher{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
