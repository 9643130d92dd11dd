package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/herdstats/herdstats/internal/types"
)

// document is the on-disk layout: the dataset plus every diagnostic the
// parsers raised, so a consumer can judge how trustworthy a run was.
type document struct {
	Contests    []types.ContestResults  `json:"contests"`
	Camps       []types.SeasonFinalists `json:"camps"`
	History     []types.HistoryEntry    `json:"history"`
	Diagnostics []types.Diagnostic      `json:"diagnostics"`
}

// JSONStorage writes the dataset as a single JSON document. A path of "-"
// writes to stdout.
type JSONStorage struct {
	path   string
	pretty bool
	logger *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, pretty bool, logger *slog.Logger) (*JSONStorage, error) {
	if outputPath != "-" {
		dir := filepath.Dir(outputPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	return &JSONStorage{
		path:   outputPath,
		pretty: pretty,
		logger: logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(dataset *types.Dataset, diags []types.Diagnostic) error {
	var w io.Writer
	if s.path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	doc := document{
		Contests:    dataset.Contests,
		Camps:       dataset.Camps,
		History:     dataset.History,
		Diagnostics: diags,
	}
	// Encode empty slices as [] rather than null.
	if doc.Contests == nil {
		doc.Contests = []types.ContestResults{}
	}
	if doc.Camps == nil {
		doc.Camps = []types.SeasonFinalists{}
	}
	if doc.History == nil {
		doc.History = []types.HistoryEntry{}
	}
	if doc.Diagnostics == nil {
		doc.Diagnostics = []types.Diagnostic{}
	}

	enc := json.NewEncoder(w)
	if s.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.logger.Info("dataset written",
		"path", s.path,
		"contests", len(doc.Contests),
		"camps", len(doc.Camps),
		"history_entries", len(doc.History),
		"diagnostics", len(doc.Diagnostics),
	)
	return nil
}

func (s *JSONStorage) Close() error { return nil }
