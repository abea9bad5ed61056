package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"rankpipe/internal/model"
)

// PostgresWriter persists record batches to the shared PostgreSQL
// store.
type PostgresWriter struct {
	db    *sql.DB
	table string
}

// NewPostgresWriter opens a connection, runs schema migration, and
// returns a ready-to-use writer.
func NewPostgresWriter(dsn, table string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	w := &PostgresWriter{db: db, table: table}
	if err := w.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return w, nil
}

func (w *PostgresWriter) migrate() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			board      TEXT NOT NULL,
			brand      TEXT NOT NULL,
			rank       INT          NOT NULL DEFAULT 0,
			name       TEXT         NOT NULL DEFAULT '',
			score      DOUBLE PRECISION NOT NULL DEFAULT 0,
			location   TEXT         NOT NULL DEFAULT '',
			sub_board  TEXT         NOT NULL DEFAULT '',
			price      INT          NOT NULL DEFAULT 0,
			region     TEXT         NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			PRIMARY KEY (board, brand)
		);
	`, pq.QuoteIdentifier(w.table)))
	return err
}

// Upsert writes the batch in a single statement per chunk: rows whose
// (board, brand) key already exists are overwritten.
func (w *PostgresWriter) Upsert(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	const chunkSize = 100
	for i := 0; i < len(records); i += chunkSize {
		end := i + chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := w.upsertChunk(ctx, records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (w *PostgresWriter) upsertChunk(ctx context.Context, chunk []model.Record) error {
	const cols = 9
	valueStrings := make([]string, 0, len(chunk))
	valueArgs := make([]interface{}, 0, len(chunk)*cols)

	for idx, r := range chunk {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			r.Board, r.Brand, r.Rank, r.Name, r.Score, r.Location, r.SubBoard, r.Price, r.Region)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (board, brand, rank, name, score, location, sub_board, price, region)
		VALUES %s
		ON CONFLICT (board, brand) DO UPDATE SET
			rank       = EXCLUDED.rank,
			name       = EXCLUDED.name,
			score      = EXCLUDED.score,
			location   = EXCLUDED.location,
			sub_board  = EXCLUDED.sub_board,
			price      = EXCLUDED.price,
			region     = EXCLUDED.region,
			updated_at = NOW()
	`, pq.QuoteIdentifier(w.table), strings.Join(valueStrings, ","))

	if _, err := w.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
	}
	return nil
}

func (w *PostgresWriter) Close() error {
	return w.db.Close()
}
