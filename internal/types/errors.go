package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes. Page content never produces
// errors, only diagnostics; these cover the fetch and storage layers and
// caller contract violations.
var (
	ErrTimeout         = errors.New("request timed out")
	ErrMaxRetries      = errors.New("max retries exceeded")
	ErrPageMissing     = errors.New("page not found")
	ErrEmptyResponse   = errors.New("empty response body")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrInvalidSeason   = errors.New("invalid season")
	ErrInvalidDivision = errors.New("division not held for this season")
	ErrScrapeStopped   = errors.New("scrape has been stopped")
)

// FetchError wraps errors that occur while retrieving a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// StorageError wraps errors that occur while persisting a dataset.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
