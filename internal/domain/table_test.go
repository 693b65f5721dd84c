package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSamples() []NormalizedSample {
	return []NormalizedSample{
		{Date: day(1), Cell: GridCell{1, 1}, Value: Number(20)},
		{Date: day(2), Cell: GridCell{2, 2}, Value: Number(21)},
		{Date: day(3), Cell: GridCell{3, 3}, Value: Number(22)},
	}
}

func TestTable_WithColumn(t *testing.T) {
	base := NewBaseTable("LST_Celsius", baseSamples())

	t1, err := base.WithColumn("NDVI_Value", []Value{Number(0.1), Missing(), Number(0.3)})
	require.NoError(t, err)
	t2, err := t1.WithColumn("LandCover_Type", []Value{Missing(), Missing(), Category("Forest")})
	require.NoError(t, err)

	assert.Equal(t, []string{"LST_Celsius", "NDVI_Value", "LandCover_Type"}, t2.Columns())
	assert.Equal(t, []Value{Number(0.1), Missing()}, t2.Rows[0].Overlays)
	assert.Equal(t, 2, t2.Rows[2].PresentOverlays())

	assert.Empty(t, base.OverlayColumns, "receiver must not change")
	assert.Len(t, t1.Rows[0].Overlays, 1, "receiver must not change")
	for i, s := range baseSamples() {
		assert.Equal(t, s, t2.Rows[i].NormalizedSample)
	}
}

func TestTable_WithColumnErrors(t *testing.T) {
	base := NewBaseTable("LST_Celsius", baseSamples())

	_, err := base.WithColumn("NDVI_Value", []Value{Number(1)})
	require.Error(t, err)

	_, err = base.WithColumn("LST_Celsius", make([]Value, 3))
	require.Error(t, err)
}

func TestTable_DropEmptyRows(t *testing.T) {
	tbl, err := NewBaseTable("LST_Celsius", baseSamples()).
		WithColumn("NDVI_Value", []Value{Missing(), Number(0.2), Missing()})
	require.NoError(t, err)
	tbl, err = tbl.WithColumn("NPP_kgCm2perYear", []Value{Missing(), Missing(), Number(1.1)})
	require.NoError(t, err)

	kept, dropped := tbl.DropEmptyRows()

	assert.Equal(t, 1, dropped)
	require.Len(t, kept.Rows, 2)
	assert.Equal(t, day(2), kept.Rows[0].Date)
	assert.Equal(t, day(3), kept.Rows[1].Date)
	assert.Len(t, tbl.Rows, 3)
}
