package storage

import (
	"context"
	"errors"
	"fmt"

	"rankpipe/internal/model"
	"rankpipe/internal/util"
)

// ErrNoData marks a batch with nothing to load. Callers count the
// board as skipped and continue.
var ErrNoData = errors.New("no data to load")

// Loader validates a reconciled batch against the store contract and
// performs the upsert. A failed upsert is reported, never propagated
// as a panic or a run abort.
type Loader struct {
	writer Writer
	log    *util.Logger
}

// NewLoader creates a Loader over a store backend.
func NewLoader(writer Writer, log *util.Logger) *Loader {
	return &Loader{writer: writer, log: log}
}

// LoadResult reports what happened to one batch.
type LoadResult struct {
	Loaded  int // records written to the store
	Dropped int // records rejected by the required-field gate
}

// Load validates and upserts one board's batch. An empty batch returns
// ErrNoData. Records missing board or brand are dropped individually
// and counted; the rest proceed. The upsert error, if any, is returned
// with its classification for the orchestrator to record.
func (l *Loader) Load(ctx context.Context, label string, batch []model.Record) (LoadResult, error) {
	var res LoadResult

	if len(batch) == 0 {
		return res, ErrNoData
	}

	valid := make([]model.Record, 0, len(batch))
	for _, r := range batch {
		if !r.HasKey() {
			res.Dropped++
			continue
		}
		valid = append(valid, r)
	}
	if res.Dropped > 0 {
		l.log.Warn("[%s] dropped %d records missing required board/brand fields", label, res.Dropped)
	}
	if len(valid) == 0 {
		return res, ErrNoData
	}

	if err := l.writer.Upsert(ctx, valid); err != nil {
		// Classification plus message: enough to diagnose after the fact.
		l.log.Error("[%s] store upsert failed: %T: %v", label, err, err)
		return res, fmt.Errorf("upsert %d records: %w", len(valid), err)
	}

	res.Loaded = len(valid)
	return res, nil
}
