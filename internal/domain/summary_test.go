package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tbl := Table{
		BaseColumn:     "LST_Celsius",
		OverlayColumns: []string{"NDVI_Value", "LandCover_Type"},
		Rows: []MatchedRow{
			{NormalizedSample: NormalizedSample{Date: day(3), Cell: GridCell{1, 1}, Value: Number(20)},
				Overlays: []Value{Number(0.4), Category("Forest")}},
			{NormalizedSample: NormalizedSample{Date: day(1), Cell: GridCell{1, 1}, Value: Number(21)},
				Overlays: []Value{Missing(), Category("Forest")}},
			{NormalizedSample: NormalizedSample{Date: day(3), Cell: GridCell{2, 2}, Value: Number(22)},
				Overlays: []Value{Missing(), Missing()}},
			{NormalizedSample: NormalizedSample{Date: day(5), Cell: GridCell{3, 3}, Value: Number(23)},
				Overlays: []Value{Number(0.1), Missing()}},
		},
	}

	got := Summarize(tbl)

	want := Summary{
		Rows:            4,
		FirstDate:       day(1),
		LastDate:        day(5),
		UniqueDates:     3,
		UniqueLocations: 3,
		Fill: []ColumnFill{
			{Column: "LST_Celsius", Present: 4, Rate: 1},
			{Column: "NDVI_Value", Present: 2, Rate: 0.5},
			{Column: "LandCover_Type", Present: 2, Rate: 0.5},
		},
		PresentCounts: []int{0, 1, 2, 1},
		CompleteRows:  1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(Table{BaseColumn: "LST_Celsius", OverlayColumns: []string{"NDVI_Value"}})
	assert.Zero(t, got.Rows)
	assert.True(t, got.FirstDate.IsZero())
	assert.Equal(t, []int{0, 0, 0}, got.PresentCounts)
	assert.InDelta(t, 0, got.Fill[1].Rate, 0)
}
