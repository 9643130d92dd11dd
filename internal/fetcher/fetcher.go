package fetcher

import (
	"context"
	"time"
)

// Response holds the outcome of fetching a single page.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Missing reports whether the server said the page does not exist.
// Absent historical pages are expected and are not errors.
func (r *Response) Missing() bool {
	return r.StatusCode == 404 || r.StatusCode == 410
}

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given URL.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
