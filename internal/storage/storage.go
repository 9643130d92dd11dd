package storage

import (
	"github.com/herdstats/herdstats/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a scraped dataset and its diagnostics.
	Store(dataset *types.Dataset, diags []types.Diagnostic) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}
