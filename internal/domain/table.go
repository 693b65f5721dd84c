package domain

import "fmt"

// MatchedRow is a base sample extended with one value per joined overlay.
type MatchedRow struct {
	NormalizedSample
	Overlays []Value
}

// PresentOverlays counts the overlay values that are not Missing.
func (r MatchedRow) PresentOverlays() int {
	n := 0
	for _, v := range r.Overlays {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// Table is the running result of the join. Methods return new tables and
// never modify the receiver.
type Table struct {
	BaseColumn     string
	OverlayColumns []string
	Rows           []MatchedRow
}

// NewBaseTable starts a join from the base dataset's samples.
func NewBaseTable(baseColumn string, base []NormalizedSample) Table {
	rows := make([]MatchedRow, len(base))
	for i, s := range base {
		rows[i] = MatchedRow{NormalizedSample: s}
	}
	return Table{BaseColumn: baseColumn, Rows: rows}
}

// Columns returns every value column: the base column followed by the overlays.
func (t Table) Columns() []string {
	return append([]string{t.BaseColumn}, t.OverlayColumns...)
}

// WithColumn left-extends the table with one overlay column. values must hold
// one entry per row, aligned with row order.
func (t Table) WithColumn(name string, values []Value) (Table, error) {
	if len(values) != len(t.Rows) {
		return Table{}, fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(t.Rows))
	}
	for _, c := range t.Columns() {
		if c == name {
			return Table{}, fmt.Errorf("column %s already present", name)
		}
	}

	rows := make([]MatchedRow, len(t.Rows))
	for i, r := range t.Rows {
		overlays := make([]Value, len(r.Overlays), len(r.Overlays)+1)
		copy(overlays, r.Overlays)
		rows[i] = MatchedRow{NormalizedSample: r.NormalizedSample, Overlays: append(overlays, values[i])}
	}

	cols := make([]string, len(t.OverlayColumns), len(t.OverlayColumns)+1)
	copy(cols, t.OverlayColumns)
	return Table{BaseColumn: t.BaseColumn, OverlayColumns: append(cols, name), Rows: rows}, nil
}

// DropEmptyRows removes rows whose overlay values are all Missing and returns
// the number of rows removed. Rows with partial coverage are kept.
func (t Table) DropEmptyRows() (Table, int) {
	rows := make([]MatchedRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.PresentOverlays() > 0 {
			rows = append(rows, r)
		}
	}
	cols := make([]string, len(t.OverlayColumns))
	copy(cols, t.OverlayColumns)
	return Table{BaseColumn: t.BaseColumn, OverlayColumns: cols, Rows: rows}, len(t.Rows) - len(rows)
}
