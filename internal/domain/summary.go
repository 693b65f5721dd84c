package domain

import "time"

// ColumnFill reports how many rows carry a value for one column.
type ColumnFill struct {
	Column  string
	Present int
	Rate    float64 // 0..1
}

// Summary describes a finished join.
type Summary struct {
	Rows            int
	FirstDate       time.Time
	LastDate        time.Time
	UniqueDates     int
	UniqueLocations int
	Fill            []ColumnFill

	// PresentCounts[i] is the number of rows with exactly i present values,
	// counting the base value.
	PresentCounts []int
	CompleteRows  int
}

// Summarize computes fill rates and coverage statistics for a table.
func Summarize(t Table) Summary {
	cols := t.Columns()
	s := Summary{
		Rows:          len(t.Rows),
		Fill:          make([]ColumnFill, len(cols)),
		PresentCounts: make([]int, len(cols)+1),
	}
	for i, c := range cols {
		s.Fill[i].Column = c
	}

	dates := make(map[time.Time]struct{})
	cells := make(map[GridCell]struct{})
	for _, r := range t.Rows {
		dates[r.Date] = struct{}{}
		cells[r.Cell] = struct{}{}
		if s.FirstDate.IsZero() || r.Date.Before(s.FirstDate) {
			s.FirstDate = r.Date
		}
		if r.Date.After(s.LastDate) {
			s.LastDate = r.Date
		}

		present := 0
		if !r.Value.IsMissing() {
			s.Fill[0].Present++
			present++
		}
		for j, v := range r.Overlays {
			if !v.IsMissing() {
				s.Fill[j+1].Present++
				present++
			}
		}
		s.PresentCounts[present]++
		if present == len(cols) {
			s.CompleteRows++
		}
	}

	s.UniqueDates = len(dates)
	s.UniqueLocations = len(cells)
	if s.Rows > 0 {
		for i := range s.Fill {
			s.Fill[i].Rate = float64(s.Fill[i].Present) / float64(s.Rows)
		}
	}
	return s
}
