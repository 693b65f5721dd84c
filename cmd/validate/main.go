// Command validate checks a linked output file against the invariants of the
// linkage run that produced it: schema, grid alignment, key uniqueness, row
// retention, sanitized values and annual broadcast consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -output formulization_data_final.csv \
//	  -datasets data/mock/datasets.yaml
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/config"
	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// outputRow is one parsed line of the linked file.
type outputRow struct {
	line   int
	date   time.Time
	lon    float64
	lat    float64
	values []string // base column first, then overlays
}

func main() {
	output := flag.String("output", "", "linked CSV file to validate")
	datasets := flag.String("datasets", "", "datasets.yaml used for the run (default registry if empty)")
	resolution := flag.Float64("resolution", domain.DefaultGridResolution, "grid resolution in degrees")
	flag.Parse()

	if *output == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*output, *datasets, *resolution); code != 0 {
		os.Exit(code)
	}
}

func run(outputPath, datasetsPath string, resolution float64) int {
	fmt.Println("=== Linked Output Validation ===")
	fmt.Println()

	reg, err := config.LoadRegistry(datasetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load registry: %v\n", err)
		return 1
	}

	header, rows, err := loadOutput(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load output: %v\n", err)
		return 1
	}

	schema := validateSchema(header, reg)
	if !schema.passed() {
		report([]*phase{schema}, len(rows))
		return 1
	}

	phases := []*phase{
		schema,
		validateRows(rows, resolution),
		validateValues(rows, reg),
		validateAnnualConsistency(rows, reg, resolution),
	}
	if report(phases, len(rows)) {
		return 0
	}
	return 1
}

func report(phases []*phase, rows int) bool {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors[:min(len(p.errors), 25)] {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if len(p.errors) > 25 {
			fmt.Printf("  ... %d more\n", len(p.errors)-25)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
	} else {
		fmt.Println("\nValidation FAILED.")
	}
	return allPassed
}

// ── Data loading ──

func loadOutput(path string) ([]string, []outputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file %s", path)
	}

	header := all[0]
	rows := make([]outputRow, 0, len(all)-1)
	for i, rec := range all[1:] {
		line := i + 2
		if len(rec) != len(header) || len(rec) < 4 {
			return nil, nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		lon, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		lat, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		rows = append(rows, outputRow{line: line, date: date, lon: lon, lat: lat, values: rec[3:]})
	}
	return header, rows, nil
}

// ── Phases ──

func validateSchema(header []string, reg domain.Registry) *phase {
	p := &phase{name: "Schema matches registry"}
	want := append([]string{"date", "longitude", "latitude", reg.Base.Column}, reg.OverlayColumns()...)
	if strings.Join(header, ",") != strings.Join(want, ",") {
		p.errorf("header %v, want %v", header, want)
	}
	return p
}

func onGrid(x, resolution float64) bool {
	q := x / resolution
	return math.Abs(q-math.Round(q)) < 1e-6
}

func validateRows(rows []outputRow, resolution float64) *phase {
	p := &phase{name: "Rows: year, grid, unique keys, retention"}
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.date.Year() != domain.AnalysisYear {
			p.errorf("line %d: date %s outside %d", r.line, r.date.Format("2006-01-02"), domain.AnalysisYear)
		}
		if !onGrid(r.lon, resolution) || !onGrid(r.lat, resolution) {
			p.errorf("line %d: (%v, %v) not on the %v° grid", r.line, r.lon, r.lat, resolution)
		}
		if r.values[0] == "" {
			p.errorf("line %d: base value missing", r.line)
		}
		present := 0
		for _, v := range r.values[1:] {
			if v != "" {
				present++
			}
		}
		if present == 0 {
			p.errorf("line %d: every overlay value is missing", r.line)
		}

		cell := domain.CellOf(r.lon, r.lat, resolution)
		key := fmt.Sprintf("%s|%d|%d", r.date.Format("2006-01-02"), cell.LonIndex, cell.LatIndex)
		if prev, dup := seen[key]; dup {
			p.errorf("line %d: duplicate key %s (first on line %d)", r.line, key, prev)
		}
		seen[key] = r.line
	}
	return p
}

func validateValues(rows []outputRow, reg domain.Registry) *phase {
	p := &phase{name: "Values: sanitized and in range"}
	specs := []domain.DatasetSpec{reg.Base}
	for _, o := range reg.Overlays {
		specs = append(specs, o.Dataset)
	}

	for _, r := range rows {
		for j, ds := range specs {
			raw := r.values[j]
			if raw == "" {
				continue
			}
			v := domain.ParseValue(raw, ds.Categorical)
			if !ds.Categorical && v.IsMissing() {
				p.errorf("line %d: %s value %q is not numeric", r.line, ds.Column, raw)
				continue
			}
			if ds.Sanitizer().SanitizeValue(v).IsMissing() {
				p.errorf("line %d: %s value %s is a fill value or out of range", r.line, ds.Column, raw)
			}
		}
	}
	return p
}

func validateAnnualConsistency(rows []outputRow, reg domain.Registry, resolution float64) *phase {
	p := &phase{name: "Annual overlays constant per location"}
	for i, o := range reg.Overlays {
		if o.Params.Mode() != domain.ModeAnnual {
			continue
		}
		col := i + 1
		byCell := make(map[domain.GridCell]string)
		for _, r := range rows {
			cell := domain.CellOf(r.lon, r.lat, resolution)
			v := r.values[col]
			prev, ok := byCell[cell]
			if !ok {
				byCell[cell] = v
				continue
			}
			if prev != v {
				p.errorf("line %d: %s is %q here but %q elsewhere at the same location", r.line, o.Dataset.Column, v, prev)
			}
		}
	}
	return p
}
