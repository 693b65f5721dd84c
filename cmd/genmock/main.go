// Command genmock writes a deterministic synthetic copy of every dataset in
// the default registry, together with a datasets.yaml describing them. The
// files carry the defects the pipeline must handle: fill values, out-of-range
// readings, several samples per grid cell and rows outside the analysis year.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -locations 200 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/config"
	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

var landCoverClasses = []string{"Forest", "Grass", "Cropland", "Shrubland", "Urban"}

type location struct {
	lon, lat float64
}

// generator owns the random source so that a seed reproduces every file.
type generator struct {
	rng       *rand.Rand
	locations []location
}

type row struct {
	date     time.Time
	lon, lat float64
	value    string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for the generated CSV files")
	nLocations := flag.Int("locations", 100, "number of base locations")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *outDir == "" || *nLocations < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag -out or invalid -locations")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	g := newGenerator(*seed, *nLocations)
	reg := domain.DefaultRegistry()

	datasets := []struct {
		spec domain.DatasetSpec
		rows []row
	}{
		{reg.Base, g.lst()},
		{reg.Overlays[0].Dataset, g.ndvi()},
		{reg.Overlays[1].Dataset, g.npp()},
		{reg.Overlays[2].Dataset, g.landCover()},
		{reg.Overlays[3].Dataset, g.treeCover()},
	}
	for _, d := range datasets {
		path := filepath.Join(*outDir, d.spec.File)
		if err := writeCSV(path, d.spec, d.rows); err != nil {
			return fmt.Errorf("writing %s: %w", d.spec.Name, err)
		}
		log.Printf("%s: %d rows -> %s", d.spec.Name, len(d.rows), path)
	}

	data, err := config.MarshalRegistry(reg)
	if err != nil {
		return err
	}
	regPath := filepath.Join(*outDir, "datasets.yaml")
	if err := os.WriteFile(regPath, data, 0o600); err != nil {
		return err
	}
	log.Printf("wrote registry: %s", regPath)
	return nil
}

func newGenerator(seed uint64, n int) *generator {
	g := &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	for range n {
		g.locations = append(g.locations, location{
			lon: round3(28 + g.rng.Float64()*4),
			lat: round3(38 + g.rng.Float64()*4),
		})
	}
	return g
}

// jitter moves a coordinate by up to ±d degrees.
func (g *generator) jitter(x, d float64) float64 {
	return round3(x + (g.rng.Float64()*2-1)*d)
}

func (g *generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func (g *generator) lst() []row {
	var rows []row
	for _, loc := range g.locations {
		// A few December 2023 rows that the year filter must drop.
		rows = append(rows, row{date: domain.Epoch.AddDate(0, 0, -3), lon: loc.lon, lat: loc.lat, value: "4.5"})
		for day := 0; day < 366; day += 4 {
			date := domain.Epoch.AddDate(0, 0, day)
			temp := 15 + 12*math.Sin(2*math.Pi*(float64(day)-100)/366) + g.rng.NormFloat64()
			switch {
			case g.chance(0.02):
				temp = 75 // sensor glitch, out of range
			case g.chance(0.02):
				// Second reading in the same cell; aggregated by mean.
				rows = append(rows, row{date: date, lon: g.jitter(loc.lon, 0.003), lat: g.jitter(loc.lat, 0.003), value: fmtFloat(temp + 0.5)})
			}
			rows = append(rows, row{date: date, lon: loc.lon, lat: loc.lat, value: fmtFloat(temp)})
		}
	}
	return rows
}

func (g *generator) ndvi() []row {
	fills := []string{"6.5535", "65535", "-9999"}
	var rows []row
	for _, loc := range g.locations {
		lon, lat := g.jitter(loc.lon, 0.012), g.jitter(loc.lat, 0.012)
		for day := 3; day < 366; day += 16 {
			v := fmtFloat(0.2 + 0.6*g.rng.Float64())
			if g.chance(0.05) {
				v = fills[g.rng.IntN(len(fills))]
			}
			rows = append(rows, row{date: domain.Epoch.AddDate(0, 0, day), lon: lon, lat: lat, value: v})
		}
	}
	return rows
}

func (g *generator) npp() []row {
	var rows []row
	for _, loc := range g.locations {
		lon, lat := g.jitter(loc.lon, 0.01), g.jitter(loc.lat, 0.01)
		v := fmtFloat(2 * g.rng.Float64())
		if g.chance(0.05) {
			v = "3.2767"
		}
		rows = append(rows,
			row{date: domain.Epoch, lon: lon, lat: lat, value: v},
			row{date: domain.Epoch.AddDate(-1, 0, 0), lon: lon, lat: lat, value: fmtFloat(2 * g.rng.Float64())},
		)
	}
	return rows
}

func (g *generator) landCover() []row {
	var rows []row
	for _, loc := range g.locations {
		lon, lat := g.jitter(loc.lon, 0.01), g.jitter(loc.lat, 0.01)
		class := landCoverClasses[g.rng.IntN(len(landCoverClasses))]
		rows = append(rows, row{date: domain.Epoch, lon: lon, lat: lat, value: class})
		if g.chance(0.2) {
			rows = append(rows, row{date: domain.Epoch.AddDate(0, 6, 0), lon: lon, lat: lat, value: class})
		}
	}
	return rows
}

func (g *generator) treeCover() []row {
	var rows []row
	for _, loc := range g.locations {
		lon, lat := g.jitter(loc.lon, 0.04), g.jitter(loc.lat, 0.04)
		v := fmtFloat(100 * g.rng.Float64())
		switch {
		case g.chance(0.04):
			v = "-999"
		case g.chance(0.02):
			v = "250"
		}
		rows = append(rows, row{date: domain.Epoch, lon: lon, lat: lat, value: v})
	}
	return rows
}

func writeCSV(path string, ds domain.DatasetSpec, rows []row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if ds.HasHeader {
		if err := w.Write([]string{"date", "longitude", "latitude", ds.Column}); err != nil {
			return err
		}
	}
	for _, r := range rows {
		rec := []string{r.date.Format("2006-01-02"), fmtFloat(r.lon), fmtFloat(r.lat), r.value}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
