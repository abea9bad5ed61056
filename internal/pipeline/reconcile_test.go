package pipeline

import (
	"testing"

	"rankpipe/internal/model"
)

func TestDedupeKeys_CollisionSuffixes(t *testing.T) {
	in := []model.Record{
		{Board: "A", Brand: "X", Rank: 1},
		{Board: "A", Brand: "X", Rank: 2},
		{Board: "B", Brand: "Y", Rank: 1},
		{Board: "A", Brand: "X", Rank: 3},
	}

	out, renamed := DedupeKeys(in)

	if len(out) != len(in) {
		t.Fatalf("record count changed: got %d, want %d", len(out), len(in))
	}
	wantBrands := []string{"X", "X_2", "Y", "X_3"}
	for i, want := range wantBrands {
		if out[i].Brand != want {
			t.Errorf("out[%d].Brand = %q, want %q", i, out[i].Brand, want)
		}
	}
	// Order must be stable: ranks still 1,2,1,3.
	wantRanks := []int{1, 2, 1, 3}
	for i, want := range wantRanks {
		if out[i].Rank != want {
			t.Errorf("out[%d].Rank = %d, want %d", i, out[i].Rank, want)
		}
	}
	if renamed != 2 {
		t.Errorf("renamed = %d, want 2", renamed)
	}
}

func TestDedupeKeys_SameBrandDifferentBoardsKeptDistinct(t *testing.T) {
	in := []model.Record{
		{Board: "A", Brand: "X"},
		{Board: "B", Brand: "X"},
	}
	out, renamed := DedupeKeys(in)
	if renamed != 0 {
		t.Errorf("renamed = %d, want 0: board is part of the key", renamed)
	}
	if out[0].Brand != "X" || out[1].Brand != "X" {
		t.Errorf("brands modified across boards: %q, %q", out[0].Brand, out[1].Brand)
	}
}

func TestDedupeKeys_DoesNotMutateInput(t *testing.T) {
	in := []model.Record{
		{Board: "A", Brand: "X"},
		{Board: "A", Brand: "X"},
	}
	_, _ = DedupeKeys(in)
	if in[1].Brand != "X" {
		t.Errorf("input mutated: %q", in[1].Brand)
	}
}

func TestDedupeKeys_EmptyBrandNotSuffixed(t *testing.T) {
	in := []model.Record{
		{Board: "A", Brand: ""},
		{Board: "A", Brand: ""},
	}
	out, renamed := DedupeKeys(in)
	if renamed != 0 {
		t.Errorf("renamed = %d, want 0 for empty brands", renamed)
	}
	// Empty brands fail the required-field gate downstream anyway.
	if out[1].Brand != "" {
		t.Errorf("empty brand suffixed to %q", out[1].Brand)
	}
}
