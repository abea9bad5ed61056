package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"rankpipe/internal/model"
)

// SQLiteWriter persists record batches to a local SQLite file. It is
// the offline counterpart of the shared Postgres store, useful for dry
// runs and for environments without store credentials.
type SQLiteWriter struct {
	db    *sql.DB
	table string
}

// NewSQLiteWriter opens (or creates) the database file and runs schema
// migration.
func NewSQLiteWriter(path, table string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// The pipeline writes from at most a handful of goroutines; a
	// single connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	w := &SQLiteWriter{db: db, table: table}
	if err := w.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return w, nil
}

func (w *SQLiteWriter) migrate() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			board      TEXT NOT NULL,
			brand      TEXT NOT NULL,
			rank       INTEGER NOT NULL DEFAULT 0,
			name       TEXT    NOT NULL DEFAULT '',
			score      REAL    NOT NULL DEFAULT 0,
			location   TEXT    NOT NULL DEFAULT '',
			sub_board  TEXT    NOT NULL DEFAULT '',
			price      INTEGER NOT NULL DEFAULT 0,
			region     TEXT    NOT NULL DEFAULT '',
			updated_at TEXT    NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (board, brand)
		);
	`, quoteIdent(w.table)))
	return err
}

// Upsert writes the batch; rows whose (board, brand) key already
// exists are overwritten.
func (w *SQLiteWriter) Upsert(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (board, brand, rank, name, score, location, sub_board, price, region)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (board, brand) DO UPDATE SET
			rank       = excluded.rank,
			name       = excluded.name,
			score      = excluded.score,
			location   = excluded.location,
			sub_board  = excluded.sub_board,
			price      = excluded.price,
			region     = excluded.region,
			updated_at = datetime('now')
	`, quoteIdent(w.table)))
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Board, r.Brand, r.Rank, r.Name, r.Score, r.Location, r.SubBoard, r.Price, r.Region); err != nil {
			return fmt.Errorf("sqlite: upsert %s/%s: %w", r.Board, r.Brand, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
