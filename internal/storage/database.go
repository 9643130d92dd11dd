package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herdstats/herdstats/internal/config"
	"github.com/herdstats/herdstats/internal/types"
)

// MongoStorage writes a scrape run into MongoDB, one collection per record
// kind. Every run replaces the previous contents, matching the scrape's
// full-archive semantics.
type MongoStorage struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client: client,
		db:     client.Database(database),
		logger: logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(dataset *types.Dataset, diags []types.Diagnostic) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	contests := make([]any, len(dataset.Contests))
	for i, cr := range dataset.Contests {
		results := make([]bson.M, len(cr.Results))
		for k, r := range cr.Results {
			results[k] = bson.M{
				"name":      r.Name,
				"country":   r.Country,
				"grad_year": r.GradYear,
				"scores":    r.Scores,
				"total":     r.Total,
				"promoted":  r.Promoted,
			}
		}
		contests[i] = bson.M{
			"season":   cr.Contest.Season.String(),
			"month":    cr.Contest.Month.URLName(),
			"year":     cr.Contest.Year,
			"division": cr.Division.String(),
			"results":  results,
		}
	}

	camps := make([]any, len(dataset.Camps))
	for i, sf := range dataset.Camps {
		finalists := make([]bson.M, len(sf.Finalists))
		for k, f := range sf.Finalists {
			finalists[k] = bson.M{
				"name":      f.Name,
				"category":  f.Category.String(),
				"grad_year": f.GradYear,
				"school":    f.School,
				"state":     f.State,
			}
		}
		camps[i] = bson.M{
			"season":    sf.Season.String(),
			"finalists": finalists,
		}
	}

	history := make([]any, len(dataset.History))
	for i, h := range dataset.History {
		history[i] = bson.M{
			"year":        h.Year,
			"competition": h.Kind.String(),
			"name":        h.Name,
			"result":      h.Result,
		}
	}

	diagnostics := make([]any, len(diags))
	for i, d := range diags {
		diagnostics[i] = bson.M{
			"page":   d.Page,
			"row":    d.Row,
			"col":    d.Col,
			"reason": d.Reason,
		}
	}

	for _, batch := range []struct {
		collection string
		docs       []any
	}{
		{"contests", contests},
		{"camps", camps},
		{"history", history},
		{"diagnostics", diagnostics},
	} {
		coll := s.db.Collection(batch.collection)
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("clear %s: %w", batch.collection, err)}
		}
		if len(batch.docs) == 0 {
			continue
		}
		if _, err := coll.InsertMany(ctx, batch.docs); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("insert %s: %w", batch.collection, err)}
		}
		s.logger.Debug("collection stored", "collection", batch.collection, "docs", len(batch.docs))
	}

	s.logger.Info("dataset stored in mongodb",
		"contests", len(contests),
		"camps", len(camps),
		"history_entries", len(history),
		"diagnostics", len(diagnostics),
	)
	return nil
}

func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// New constructs the backend named by the configuration.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "mongo":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, logger)
	case "json", "":
		return NewJSONStorage(cfg.OutputPath, cfg.Pretty, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
