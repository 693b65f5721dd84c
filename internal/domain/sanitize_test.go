package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_SanitizeValue(t *testing.T) {
	ndvi := Sanitizer{
		Range:      &ValidRange{Min: -1, Max: 1},
		FillValues: []float64{6.5535, 65535, -9999},
	}

	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"in range", Number(0.42), Number(0.42)},
		{"lower bound inclusive", Number(-1), Number(-1)},
		{"upper bound inclusive", Number(1), Number(1)},
		{"fill value", Number(6.5535), Missing()},
		{"large fill value", Number(65535), Missing()},
		{"out of range", Number(1.2), Missing()},
		{"already missing", Missing(), Missing()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ndvi.SanitizeValue(tt.in))
		})
	}
}

func TestSanitizer_NoRules(t *testing.T) {
	var s Sanitizer
	assert.Equal(t, Number(-9999), s.SanitizeValue(Number(-9999)))
	assert.Equal(t, Category("Forest"), s.SanitizeValue(Category("Forest")))
}

func TestSanitizer_CategoricalCodes(t *testing.T) {
	s := Sanitizer{FillValues: []float64{255}}
	assert.True(t, s.SanitizeValue(Category("255")).IsMissing())
	assert.Equal(t, Category("12"), s.SanitizeValue(Category("12")))
	assert.Equal(t, Category("Grass"), s.SanitizeValue(Category("Grass")))
}

func TestSanitizer_Sanitize(t *testing.T) {
	s := Sanitizer{
		Range:      &ValidRange{Min: 0, Max: 100},
		FillValues: []float64{-999, -9999},
	}
	in := []RawSample{
		{Longitude: 1, Value: Number(55)},
		{Longitude: 2, Value: Number(-999)},
		{Longitude: 3, Value: Number(120)},
		{Longitude: 4, Value: Number(-9999)},
		{Longitude: 5, Value: Missing()},
	}

	out, stats := s.Sanitize(in)

	assert.Len(t, out, len(in))
	assert.Equal(t, Number(55), out[0].Value)
	for _, rs := range out[1:] {
		assert.True(t, rs.Value.IsMissing(), "lon %v", rs.Longitude)
	}
	assert.Equal(t, 2, stats.Filled)
	assert.Equal(t, 1, stats.OutOfRange)
	assert.Equal(t, 3, stats.Invalidated())
	assert.Equal(t, Number(-999), in[1].Value, "input must not be modified")
}
