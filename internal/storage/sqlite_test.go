package storage

import (
	"context"
	"path/filepath"
	"testing"

	"rankpipe/internal/model"
)

func TestSQLiteWriter_UpsertOverwritesOnKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	w, err := NewSQLiteWriter(path, "board_records")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer w.Close()

	ctx := context.Background()
	first := []model.Record{
		{Board: "main", Brand: "A", Rank: 1, Score: 4.5, Region: "CityX"},
		{Board: "main", Brand: "B", Rank: 2, Score: 4.3, Region: "CityX"},
	}
	if err := w.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Same key, new values: must overwrite, not duplicate or fail.
	second := []model.Record{
		{Board: "main", Brand: "A", Rank: 3, Score: 4.7, Region: "CityX"},
	}
	if err := w.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM "board_records"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}

	var rank int
	var score float64
	err = w.db.QueryRow(`SELECT rank, score FROM "board_records" WHERE board = 'main' AND brand = 'A'`).
		Scan(&rank, &score)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if rank != 3 || score != 4.7 {
		t.Errorf("got rank=%d score=%v, want overwritten 3/4.7", rank, score)
	}
}

func TestSQLiteWriter_EmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	w, err := NewSQLiteWriter(path, "board_records")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer w.Close()

	if err := w.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert: %v", err)
	}
}
