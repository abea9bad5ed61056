package model

import "fmt"

// BoardState tracks a board through the pipeline.
type BoardState string

const (
	StatePending     BoardState = "pending"
	StateExtracting  BoardState = "extracting"
	StateNormalizing BoardState = "normalizing"
	StateReconciling BoardState = "reconciling"
	StateLoading     BoardState = "loading"
	StateSucceeded   BoardState = "succeeded"
	StateFailed      BoardState = "failed"
)

// BoardOutcome classifies the terminal result of one board.
type BoardOutcome string

const (
	OutcomeSucceeded BoardOutcome = "succeeded"
	OutcomeSkipped   BoardOutcome = "skipped" // board yielded no storable data
	OutcomeFailed    BoardOutcome = "failed"  // store rejected the batch
)

// BoardResult is the terminal record for one board, in traversal order.
type BoardResult struct {
	Label   string       `json:"label"`
	Main    bool         `json:"main"`
	State   BoardState   `json:"state"`
	Outcome BoardOutcome `json:"outcome"`
	Records int          `json:"records"`           // records reaching the store call
	Dropped int          `json:"dropped,omitempty"` // records failing the required-field gate
	Renamed int          `json:"renamed,omitempty"` // key collisions disambiguated
	Err     string       `json:"error,omitempty"`
}

// StandardBoardCount is the expected number of boards per run: one main
// board plus nineteen sub-boards.
const StandardBoardCount = 20

// RunSummary aggregates board outcomes for the final report.
type RunSummary struct {
	Region   string        `json:"region"`
	Boards   []BoardResult `json:"boards"`
	Expected int           `json:"expected"`
}

// Add appends a terminal board result.
func (s *RunSummary) Add(r BoardResult) {
	s.Boards = append(s.Boards, r)
}

// Succeeded returns the number of boards that loaded successfully.
func (s *RunSummary) Succeeded() int { return s.count(OutcomeSucceeded) }

// Skipped returns the number of boards that yielded no data.
func (s *RunSummary) Skipped() int { return s.count(OutcomeSkipped) }

// Failed returns the number of boards whose store call failed.
func (s *RunSummary) Failed() int { return s.count(OutcomeFailed) }

// Records returns the total number of records that reached the store.
func (s *RunSummary) Records() int {
	total := 0
	for _, b := range s.Boards {
		if b.Outcome == OutcomeSucceeded {
			total += b.Records
		}
	}
	return total
}

func (s *RunSummary) count(o BoardOutcome) int {
	n := 0
	for _, b := range s.Boards {
		if b.Outcome == o {
			n++
		}
	}
	return n
}

// Verdict compares the processed board count against the expected total.
// Under- and over-counts are warnings, never errors: the run itself is
// complete either way.
func (s *RunSummary) Verdict() string {
	expected := s.Expected
	if expected <= 0 {
		expected = StandardBoardCount
	}
	got := len(s.Boards)

	switch {
	case got == expected:
		return fmt.Sprintf("processed %d boards: matches standard count (%d)", got, expected)
	case got < expected:
		return fmt.Sprintf("warning: processed %d boards, fewer than standard count (%d) - some boards may be missing", got, expected)
	default:
		return fmt.Sprintf("notice: processed %d boards, more than standard count (%d)", got, expected)
	}
}
