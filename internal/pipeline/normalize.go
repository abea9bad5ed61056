package pipeline

import "rankpipe/internal/model"

// Normalize turns raw extracted records into storage candidates. The
// board field is overwritten with the trusted source label - the model
// re-derives the board from pixels and gets it wrong often enough -
// and every record is tagged with the run's region. Nothing is
// validated here: records missing optional fields stay candidates
// until the store loader's required-field gate.
func Normalize(raw []model.RawRecord, board, region string) []model.Record {
	records := make([]model.Record, 0, len(raw))
	for _, r := range raw {
		records = append(records, model.Record{
			Board:    board,
			Brand:    r.Brand.Value,
			Rank:     r.Rank.Value,
			Name:     r.Name.Value,
			Score:    r.Score.Value,
			Location: r.Location.Value,
			SubBoard: r.SubBoard.Value,
			Price:    r.Price.Value,
			Region:   region,
		})
	}
	return records
}
