// Package storage persists reconciled record batches into the shared
// store under an idempotent upsert contract keyed by (board, brand).
package storage

import (
	"context"
	"fmt"

	"rankpipe/internal/model"
)

// Writer is the interface any store backend must satisfy. Upsert is
// insert-or-overwrite on the (board, brand) natural key; the store
// serializes conflicting key writes.
type Writer interface {
	Upsert(ctx context.Context, records []model.Record) error
	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	Driver string // "postgres" or "sqlite"
	DSN    string // postgres connection string
	Path   string // sqlite database file
	Table  string
}

// NewWriter opens the configured store backend.
func NewWriter(cfg Config) (Writer, error) {
	table := cfg.Table
	if table == "" {
		table = "board_records"
	}

	switch cfg.Driver {
	case "postgres", "":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres store requires a DSN - set DATABASE_URL in the environment or .env")
		}
		return NewPostgresWriter(cfg.DSN, table)

	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a database path")
		}
		return NewSQLiteWriter(cfg.Path, table)

	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}
