package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// The results archive is plain server-rendered HTML, so the HTTP
// fetcher is the default; this exists for environments where the site
// sits behind a JS challenge.
type BrowserFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.FetcherConfig
	logger   *slog.Logger
	pagePool chan *rod.Page
}

// NewBrowserFetcher creates a new headless browser fetcher.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf := &BrowserFetcher{
		browser:  browser,
		launcher: l,
		cfg:      &cfg.Fetcher,
		logger:   logger.With("component", "browser_fetcher"),
		pagePool: make(chan *rod.Page, cfg.Scrape.Concurrency),
	}

	bf.logger.Info("browser fetcher ready", "max_pages", cfg.Scrape.Concurrency)
	return bf, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	page, err := bf.getPage()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err, Retryable: true}
	}
	defer bf.putPage(page)

	page = page.Context(ctx).Timeout(bf.cfg.RequestTimeout)

	start := time.Now()
	if err := page.Navigate(url); err != nil {
		return nil, &types.FetchError{URL: url, Err: err, Retryable: true}
	}
	if err := page.WaitStable(500 * time.Millisecond); err != nil {
		bf.logger.Warn("wait stable timeout", "url", url, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err, Retryable: true}
	}

	// Rod doesn't easily expose status codes; a navigation that lands
	// on the archive's "page not found" stub is detected upstream by
	// the parsers producing nothing.
	resp := &Response{
		URL:        url,
		StatusCode: 200,
		Body:       []byte(html),
		Duration:   time.Since(start),
	}

	bf.logger.Debug("browser fetch complete",
		"url", url,
		"size", len(html),
		"duration", resp.Duration,
	)

	return resp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	close(bf.pagePool)
	for page := range bf.pagePool {
		_ = page.Close()
	}
	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
	}
	if bf.launcher != nil {
		bf.launcher.Cleanup()
	}
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// getPage retrieves a stealth page from the pool or creates a new one.
func (bf *BrowserFetcher) getPage() (*rod.Page, error) {
	select {
	case page := <-bf.pagePool:
		return page, nil
	default:
		return stealth.Page(bf.browser)
	}
}

// putPage returns a page to the pool.
func (bf *BrowserFetcher) putPage(page *rod.Page) {
	// Navigate to blank to free memory from the last page
	_ = page.Navigate("about:blank")

	select {
	case bf.pagePool <- page:
	default:
		_ = page.Close() // Pool full, close the page
	}
}

// New constructs the fetcher named by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	case "http", "":
		return NewHTTPFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}
