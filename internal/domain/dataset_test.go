package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	require.NoError(t, reg.Validate())

	assert.Equal(t, "LST_Celsius", reg.Base.Column)
	assert.Equal(t,
		[]string{"NDVI_Value", "NPP_kgCm2perYear", "LandCover_Type", "TreeCover_Percent"},
		reg.OverlayColumns())

	ndvi := reg.Overlays[0].Params
	assert.Equal(t, ModePoint, ndvi.Mode())
	assert.InDelta(t, 0.02, ndvi.SpatialTolerance, 0)
	assert.Equal(t, 8, ndvi.TemporalTolerance)

	lc := reg.Overlays[2]
	assert.Equal(t, ModeAnnual, lc.Params.Mode())
	assert.True(t, lc.Params.Categorical)
	assert.Equal(t, AggregateMode, lc.Dataset.Aggregation())

	tc := reg.Overlays[3].Params
	assert.InDelta(t, 0.05, tc.SpatialTolerance, 0)
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registry)
	}{
		{"missing base file", func(r *Registry) { r.Base.File = "" }},
		{"no overlays", func(r *Registry) { r.Overlays = nil }},
		{"zero spatial tolerance", func(r *Registry) { r.Overlays[0].Params.SpatialTolerance = 0 }},
		{"negative temporal tolerance", func(r *Registry) { r.Overlays[0].Params.TemporalTolerance = -1 }},
		{"inverted range", func(r *Registry) { r.Overlays[1].Dataset.Range = &ValidRange{Min: 5, Max: 1} }},
		{"duplicate column", func(r *Registry) { r.Overlays[1].Dataset.Column = r.Overlays[0].Dataset.Column }},
		{"column clashes with base", func(r *Registry) { r.Overlays[0].Dataset.Column = r.Base.Column }},
		{"categorical mismatch", func(r *Registry) { r.Overlays[2].Params.Categorical = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := DefaultRegistry()
			tt.mutate(&reg)
			require.ErrorIs(t, reg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDatasetSpec_Sanitizer(t *testing.T) {
	ds := DefaultRegistry().Overlays[1].Dataset
	s := ds.Sanitizer()
	assert.True(t, s.SanitizeValue(Number(3.2767)).IsMissing())
	assert.Equal(t, Number(0.8), s.SanitizeValue(Number(0.8)))
}

func TestMatchMode_String(t *testing.T) {
	assert.Equal(t, "point", ModePoint.String())
	assert.Equal(t, "annual", ModeAnnual.String())
}
