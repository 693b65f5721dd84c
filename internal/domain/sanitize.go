package domain

// ValidRange is the inclusive interval of plausible values for a dataset.
type ValidRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within [Min, Max].
func (r ValidRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Sanitizer invalidates raw values that are sentinel fill values or fall
// outside the declared range. A nil Range or empty FillValues disables that check.
type Sanitizer struct {
	Range      *ValidRange
	FillValues []float64
}

// SanitizeStats counts the values a Sanitizer invalidated.
type SanitizeStats struct {
	Filled     int
	OutOfRange int
}

// Invalidated returns the total number of values turned Missing.
func (s SanitizeStats) Invalidated() int {
	return s.Filled + s.OutOfRange
}

type invalidReason uint8

const (
	reasonNone invalidReason = iota
	reasonFill
	reasonRange
)

func (s Sanitizer) check(v Value) invalidReason {
	f, ok := v.Float()
	if !ok {
		return reasonNone
	}
	for _, fv := range s.FillValues {
		if f == fv {
			return reasonFill
		}
	}
	if s.Range != nil && !s.Range.Contains(f) {
		return reasonRange
	}
	return reasonNone
}

// SanitizeValue returns v, or Missing when v is a fill value or out of range.
func (s Sanitizer) SanitizeValue(v Value) Value {
	if s.check(v) != reasonNone {
		return Missing()
	}
	return v
}

// Sanitize returns a copy of samples with invalid values replaced by Missing.
// Rows are kept so that aggregation can see which groups became empty.
func (s Sanitizer) Sanitize(samples []RawSample) ([]RawSample, SanitizeStats) {
	var stats SanitizeStats
	out := make([]RawSample, len(samples))
	for i, rs := range samples {
		switch s.check(rs.Value) {
		case reasonFill:
			stats.Filled++
			rs.Value = Missing()
		case reasonRange:
			stats.OutOfRange++
			rs.Value = Missing()
		}
		out[i] = rs
	}
	return out, stats
}
