// Package pipeline orchestrates the extraction run: for each board,
// extract, normalize, reconcile, persist the artifact, and load into
// the store. One board's failure never stops the run.
package pipeline

import (
	"context"
	"errors"

	"rankpipe/internal/boards"
	"rankpipe/internal/model"
	"rankpipe/internal/storage"
	"rankpipe/internal/util"
	"rankpipe/internal/vision"
	"rankpipe/internal/worker"
)

// Pipeline drives the full sequence over one capture run.
type Pipeline struct {
	extractor *vision.Extractor
	loader    *storage.Loader
	artifacts *ArtifactWriter
	log       *util.Logger

	workers  int
	expected int
}

// New creates a Pipeline. workers <= 1 means strictly sequential
// processing; expected <= 0 falls back to the standard board count.
func New(extractor *vision.Extractor, loader *storage.Loader, artifacts *ArtifactWriter, log *util.Logger, workers, expected int) *Pipeline {
	if expected <= 0 {
		expected = model.StandardBoardCount
	}
	return &Pipeline{
		extractor: extractor,
		loader:    loader,
		artifacts: artifacts,
		log:       log,
		workers:   workers,
		expected:  expected,
	}
}

// Run processes every board of the run and returns the summary, with
// per-board outcomes in traversal order regardless of worker count.
func (p *Pipeline) Run(ctx context.Context, run *boards.Run) *model.RunSummary {
	summary := &model.RunSummary{Region: run.Region, Expected: p.expected}

	if p.workers <= 1 || len(run.Boards) <= 1 {
		for _, board := range run.Boards {
			summary.Add(p.processBoard(ctx, board, run.Region))
		}
		return summary
	}

	// Extraction is I/O-bound against the model endpoint, so boards
	// can run in parallel; the store serializes conflicting key
	// writes on its side. Results are re-ordered by traversal index.
	pool := worker.NewPool(p.workers, len(run.Boards))
	pool.Start()
	for i, board := range run.Boards {
		pool.Submit(&boardJob{pipeline: p, ctx: ctx, index: i, board: board, region: run.Region})
	}

	ordered := make([]model.BoardResult, len(run.Boards))
	for _, r := range pool.Wait() {
		jr := r.(*boardResult)
		ordered[jr.index] = jr.result
	}
	for _, res := range ordered {
		summary.Add(res)
	}
	return summary
}

// processBoard walks one board through the state machine:
// Pending -> Extracting -> Normalizing -> Reconciling -> Loading ->
// Succeeded | Failed.
func (p *Pipeline) processBoard(ctx context.Context, board boards.Board, region string) model.BoardResult {
	res := model.BoardResult{Label: board.Label, Main: board.Main, State: model.StatePending}
	p.log.Info("[%s] processing board (%d images)", board.Label, len(board.Images))

	res.State = model.StateExtracting
	raw := p.extractor.Extract(ctx, board.Label, board.Images)

	res.State = model.StateNormalizing
	records := Normalize(raw, board.Label, region)

	res.State = model.StateReconciling
	records, renamed := DedupeKeys(records)
	res.Renamed = renamed
	if renamed > 0 {
		p.log.Info("[%s] renamed %d colliding brand keys", board.Label, renamed)
	}

	if len(records) > 0 && p.artifacts != nil {
		if path, err := p.artifacts.Write(board.Main, records); err != nil {
			p.log.Warn("[%s] artifact write failed: %v", board.Label, err)
		} else {
			p.log.Debug("[%s] artifact written: %s", board.Label, path)
		}
	}

	res.State = model.StateLoading
	loaded, err := p.loader.Load(ctx, board.Label, records)
	res.Dropped = loaded.Dropped
	switch {
	case errors.Is(err, storage.ErrNoData):
		res.State = model.StateSucceeded
		res.Outcome = model.OutcomeSkipped
		p.log.Warn("[%s] no data to load - board skipped", board.Label)

	case err != nil:
		res.State = model.StateFailed
		res.Outcome = model.OutcomeFailed
		res.Err = err.Error()

	default:
		res.State = model.StateSucceeded
		res.Outcome = model.OutcomeSucceeded
		res.Records = loaded.Loaded
		p.log.Info("[%s] loaded %d records", board.Label, loaded.Loaded)
	}
	return res
}

// boardJob runs one board on the worker pool, carrying its traversal
// index so the summary keeps input order.
type boardJob struct {
	pipeline *Pipeline
	ctx      context.Context
	index    int
	board    boards.Board
	region   string
}

type boardResult struct {
	index  int
	result model.BoardResult
}

func (r *boardResult) Err() error {
	if r.result.Err != "" {
		return errors.New(r.result.Err)
	}
	return nil
}

func (j *boardJob) Execute(context.Context) worker.Result {
	return &boardResult{
		index:  j.index,
		result: j.pipeline.processBoard(j.ctx, j.board, j.region),
	}
}
