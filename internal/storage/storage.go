// Package storage persists imported news items: file exports for the CLI
// and the MongoDB moderation queue for the server.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of items.
	Store(ctx context.Context, items []*types.NewsItem) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the sink selected by cfg.Type. It returns nil and no error
// for "none". "json" holds every item until Close and is only offered for
// one-shot exports through NewFileStorage.
func New(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "json":
		return nil, fmt.Errorf("storage type json is export-only; use jsonl or csv for a sink")
	case "jsonl", "csv":
		return NewFileStorage(cfg.Type, cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.Database, cfg.Collection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// Pointers returns the addresses of items, in order.
func Pointers(items []types.NewsItem) []*types.NewsItem {
	out := make([]*types.NewsItem, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func storeErr(backend, op string, err error) error {
	return &types.StorageError{Backend: backend, Err: fmt.Errorf("%s: %w", op, err)}
}
