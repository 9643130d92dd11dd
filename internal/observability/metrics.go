package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for a scrape run.
type Metrics struct {
	// Fetch metrics
	PagesFetched atomic.Int64
	PagesMissing atomic.Int64
	PagesFailed  atomic.Int64
	FetchRetries atomic.Int64

	// Parse metrics
	ResultRows     atomic.Int64
	FinalistRows   atomic.Int64
	HistoryEntries atomic.Int64
	Diagnostics    atomic.Int64

	// Run metrics
	ActiveWorkers   atomic.Int32
	BytesDownloaded atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"herdstats_pages_fetched_total", "Total pages fetched", m.PagesFetched.Load()},
		{"herdstats_pages_missing_total", "Total pages reported absent by the server", m.PagesMissing.Load()},
		{"herdstats_pages_failed_total", "Total pages that failed after retries", m.PagesFailed.Load()},
		{"herdstats_fetch_retries_total", "Total fetch retries", m.FetchRetries.Load()},
		{"herdstats_result_rows_total", "Total contest result rows parsed", m.ResultRows.Load()},
		{"herdstats_finalist_rows_total", "Total finalist entries parsed", m.FinalistRows.Load()},
		{"herdstats_history_entries_total", "Total history entries parsed", m.HistoryEntries.Load()},
		{"herdstats_diagnostics_total", "Total parse diagnostics emitted", m.Diagnostics.Load()},
		{"herdstats_active_workers", "Currently active workers", int64(m.ActiveWorkers.Load())},
		{"herdstats_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_fetched":    m.PagesFetched.Load(),
		"pages_missing":    m.PagesMissing.Load(),
		"pages_failed":     m.PagesFailed.Load(),
		"fetch_retries":    m.FetchRetries.Load(),
		"result_rows":      m.ResultRows.Load(),
		"finalist_rows":    m.FinalistRows.Load(),
		"history_entries":  m.HistoryEntries.Load(),
		"diagnostics":      m.Diagnostics.Load(),
		"active_workers":   int64(m.ActiveWorkers.Load()),
		"bytes_downloaded": m.BytesDownloaded.Load(),
	}
}
