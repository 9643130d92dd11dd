package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherBasic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent header")
		}
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html><body>hello</body></html>" {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.Missing() {
		t.Error("200 reported as missing")
	}
}

func TestHTTPFetcherGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<html>compressed</html>"))
		gz.Close()
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "<html>compressed</html>" {
		t.Errorf("decompression failed, got %q", resp.Body)
	}
}

func TestHTTPFetcherNotFoundIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if !resp.Missing() {
		t.Errorf("expected Missing() for status %d", resp.StatusCode)
	}
}

func TestHTTPFetcherRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 429")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if !fe.Retryable {
		t.Error("429 should be retryable")
	}
	if fe.RetryAfter != 7*time.Second {
		t.Errorf("expected RetryAfter 7s, got %s", fe.RetryAfter)
	}
}

func TestHTTPFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fe.Retryable {
		t.Error("5xx should be retryable")
	}
	if fe.StatusCode != 502 {
		t.Errorf("expected status 502, got %d", fe.StatusCode)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"", 5 * time.Second},
		{"10", 10 * time.Second},
		{"999", 120 * time.Second},
		{"garbage", 5 * time.Second},
	}
	for _, c := range cases {
		if got := parseRetryAfter(c.header); got != c.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", c.header, got, c.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if isRetryableError(context.Canceled) {
		t.Error("context cancellation must not be retryable")
	}
	if isRetryableError(errors.New("boom")) {
		t.Error("generic errors must not be retryable")
	}
}
