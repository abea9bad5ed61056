package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The extraction model promises typed fields but delivers whatever it
// likes: numbers as strings, prices with currency glyphs, nulls. The
// Flex types coerce each field independently and record a per-field
// typed-or-rejected outcome instead of failing the whole record.

// FlexString is a string field that tolerates numeric JSON values.
type FlexString struct {
	Value string
	OK    bool
}

// FlexInt is an integer field that tolerates quoted numbers and
// currency-decorated strings like "¥128/人".
type FlexInt struct {
	Value int
	OK    bool
}

// FlexFloat is a decimal field that tolerates quoted numbers.
type FlexFloat struct {
	Value float64
	OK    bool
}

// UnmarshalJSON never returns an error; a value that cannot be coerced
// leaves the field rejected (OK=false).
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = strings.TrimSpace(s)
		f.OK = f.Value != ""
		return nil
	}

	// Numeric or boolean payload in a string slot: keep the raw token.
	f.Value = strings.TrimSpace(string(data))
	f.OK = f.Value != ""
	return nil
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value = n
		f.OK = true
		return nil
	}

	// Model sometimes returns floats for integer fields.
	var fl float64
	if err := json.Unmarshal(data, &fl); err == nil {
		f.Value = int(fl)
		f.OK = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, ok := coerceInt(s); ok {
			f.Value = n
			f.OK = true
		}
	}
	return nil
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var fl float64
	if err := json.Unmarshal(data, &fl); err == nil {
		f.Value = fl
		f.OK = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value = v
			f.OK = true
		}
	}
	return nil
}

// coerceInt parses the first integer run in s, skipping currency glyphs
// and unit suffixes ("¥128/人" -> 128).
func coerceInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	start := -1
	end := len(s)
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
