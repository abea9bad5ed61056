package model

// RawRecord is one listing as the extraction model reported it. No
// field is trusted: every one went through Flex coercion and may be
// individually rejected.
type RawRecord struct {
	Board    FlexString `json:"board"`
	Rank     FlexInt    `json:"rank"`
	Name     FlexString `json:"name"`
	Brand    FlexString `json:"brand"`
	Score    FlexFloat  `json:"score"`
	Location FlexString `json:"location"`
	SubBoard FlexString `json:"sub_board"`
	Price    FlexInt    `json:"price"`
}

// Record is a normalized listing ready for storage. Board carries the
// batch's trusted source label, not the model's own board guess, and
// Region tags the whole run. (Board, Brand) is the natural key.
type Record struct {
	Board    string  `json:"board"`
	Brand    string  `json:"brand"`
	Rank     int     `json:"rank,omitempty"`
	Name     string  `json:"name,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Location string  `json:"location,omitempty"`
	SubBoard string  `json:"sub_board,omitempty"`
	Price    int     `json:"price,omitempty"`
	Region   string  `json:"region"`
}

// HasKey reports whether the record carries a complete natural key and
// is therefore eligible for storage.
func (r Record) HasKey() bool {
	return r.Board != "" && r.Brand != ""
}
