// Package storage opens the configured notes.Store backend.
package storage

import (
	"context"
	"fmt"

	"notehub/internal/config"
	"notehub/internal/notes"
	"notehub/internal/notes/pgstore"
	"notehub/internal/notes/sqlitestore"
)

// Open returns the store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (notes.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open store: config is nil")
	}
	switch cfg.Storage.Driver {
	case config.DriverSQLite, "":
		store, err := sqlitestore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := pgstore.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("open store: unsupported driver %q", cfg.Storage.Driver)
	}
}

// Describe returns a log-safe description of the configured backend.
func Describe(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	if cfg.Storage.Driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite:" + cfg.Storage.SQLitePath
}
