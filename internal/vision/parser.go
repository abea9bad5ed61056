package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"rankpipe/internal/model"
)

// ParseRecords extracts the JSON array embedded in a model reply. The
// model tends to wrap the payload in prose, so the span runs from the
// first "[" to the last "]" - the outermost pair, never the first
// matched one. A reply with no array, or with undecodable content
// between the brackets, returns an empty slice and an error the caller
// logs; it never aborts the run.
func ParseRecords(text string) ([]model.RawRecord, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in reply")
	}

	var records []model.RawRecord
	if err := json.Unmarshal([]byte(text[start:end+1]), &records); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	return records, nil
}
