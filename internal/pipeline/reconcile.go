package pipeline

import (
	"fmt"

	"rankpipe/internal/model"
)

// DedupeKeys disambiguates records that share a (board, brand) natural
// key. Two branches of one brand can legitimately appear on the same
// board; the store's key uniqueness would silently collapse them, so
// the Nth occurrence (N>1) gets brand "brand_N" instead of being
// dropped. Pure and stable: output order and count match the input,
// the occurrence registry is a fresh local map per call.
func DedupeKeys(records []model.Record) ([]model.Record, int) {
	type key struct{ board, brand string }

	seen := make(map[key]int, len(records))
	out := make([]model.Record, 0, len(records))
	renamed := 0

	for _, r := range records {
		k := key{r.Board, r.Brand}
		seen[k]++
		if seen[k] > 1 && r.Brand != "" {
			r.Brand = fmt.Sprintf("%s_%d", r.Brand, seen[k])
			renamed++
		}
		out = append(out, r)
	}
	return out, renamed
}
