package domain

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// AggregationKind selects how duplicate observations of a key collapse.
type AggregationKind uint8

const (
	AggregateMean AggregationKind = iota
	AggregateMode
)

// AggregationFor returns the aggregation used for a value column.
func AggregationFor(categorical bool) AggregationKind {
	if categorical {
		return AggregateMode
	}
	return AggregateMean
}

func (k AggregationKind) String() string {
	if k == AggregateMode {
		return "mode"
	}
	return "mean"
}

type sampleKey struct {
	day  int64
	cell GridCell
}

// Normalize snaps samples onto the grid and collapses each (date, cell) group
// into one NormalizedSample. Output keeps the order in which keys were first
// seen; groups with no present value are dropped.
func Normalize(samples []RawSample, resolution float64, kind AggregationKind) []NormalizedSample {
	groups := make(map[sampleKey][]Value)
	order := make([]sampleKey, 0)
	dates := make(map[int64]time.Time)

	for _, rs := range samples {
		date := DateOf(rs.Date)
		key := sampleKey{
			day:  date.Unix() / 86400,
			cell: CellOf(rs.Longitude, rs.Latitude, resolution),
		}
		vals, seen := groups[key]
		if !seen {
			order = append(order, key)
			dates[key.day] = date
		}
		if !rs.Value.IsMissing() {
			vals = append(vals, rs.Value)
		}
		groups[key] = vals
	}

	out := make([]NormalizedSample, 0, len(order))
	for _, key := range order {
		var v Value
		if kind == AggregateMode {
			v = Mode(groups[key])
		} else {
			v = Mean(groups[key])
		}
		if v.IsMissing() {
			continue
		}
		lon, lat := key.cell.Coordinates(resolution)
		out = append(out, NormalizedSample{
			Date:  dates[key.day],
			Cell:  key.cell,
			Lon:   lon,
			Lat:   lat,
			Value: v,
		})
	}
	return out
}

// Mean returns the arithmetic mean of the numeric values, or Missing when
// there are none.
func Mean(values []Value) Value {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return Missing()
	}
	return Number(stat.Mean(xs, nil))
}

// Mode returns the most frequent present value. Ties go to the value whose
// first occurrence comes earliest.
func Mode(values []Value) Value {
	counts := make(map[Value]int, len(values))
	order := make([]Value, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := Missing(), 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
