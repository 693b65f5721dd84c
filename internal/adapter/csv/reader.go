package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/observability"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Reader loads dataset files from a directory.
// It implements pipeline.Extractor.
type Reader struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader creates a Reader that resolves relative dataset files against dir.
func NewReader(dir string, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{dir: dir, logger: logger, metrics: metrics}
}

type columnIndex struct {
	date, lon, lat, value int
}

// Extract reads every row of the dataset file. Files with a header locate
// columns by name; header-less files are read as date, longitude, latitude,
// value. Rows with an unparseable date or coordinate are skipped.
func (r *Reader) Extract(ctx context.Context, ds domain.DatasetSpec) ([]domain.RawSample, error) {
	path := ds.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputUnavailable, ds.Name, err)
	}
	defer f.Close()

	cr := stdcsv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	idx := columnIndex{date: 0, lon: 1, lat: 2, value: 3}
	if ds.HasHeader {
		header, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read header: %w", domain.ErrInputUnavailable, ds.Name, err)
		}
		idx, err = locateColumns(header, ds.Column)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputUnavailable, ds.Name, err)
		}
	}

	var (
		samples []domain.RawSample
		skipped int
		line    int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *stdcsv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputUnavailable, ds.Name, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		s, err := parseRecord(rec, idx, ds.Categorical)
		if err != nil {
			skipped++
			r.logger.Debug("skipping malformed row", "dataset", ds.Name, "line", line, "error", err)
			continue
		}
		samples = append(samples, s)
	}

	if skipped > 0 {
		r.metrics.RowsSkipped.WithLabelValues(ds.Name).Add(float64(skipped))
		r.logger.Warn("malformed rows skipped", "dataset", ds.Name, "skipped", skipped)
	}
	r.logger.Info("dataset loaded", "dataset", ds.Name, "file", path, "rows", len(samples))
	return samples, nil
}

func locateColumns(header []string, valueColumn string) (columnIndex, error) {
	idx := columnIndex{date: -1, lon: -1, lat: -1, value: -1}
	for i, h := range header {
		switch name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")); {
		case strings.EqualFold(name, "date"):
			idx.date = i
		case strings.EqualFold(name, "longitude"), strings.EqualFold(name, "lon"):
			idx.lon = i
		case strings.EqualFold(name, "latitude"), strings.EqualFold(name, "lat"):
			idx.lat = i
		case name == valueColumn:
			idx.value = i
		}
	}
	switch {
	case idx.date < 0:
		return idx, errors.New("missing date column")
	case idx.lon < 0:
		return idx, errors.New("missing longitude column")
	case idx.lat < 0:
		return idx, errors.New("missing latitude column")
	case idx.value < 0:
		return idx, fmt.Errorf("missing value column %q", valueColumn)
	}
	return idx, nil
}

func parseRecord(rec []string, idx columnIndex, categorical bool) (domain.RawSample, error) {
	need := max(idx.date, idx.lon, idx.lat, idx.value)
	if len(rec) <= need {
		return domain.RawSample{}, fmt.Errorf("expected at least %d fields, got %d", need+1, len(rec))
	}

	date, err := parseDate(rec[idx.date])
	if err != nil {
		return domain.RawSample{}, err
	}
	lon, err := parseCoordinate(rec[idx.lon], 180)
	if err != nil {
		return domain.RawSample{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := parseCoordinate(rec[idx.lat], 90)
	if err != nil {
		return domain.RawSample{}, fmt.Errorf("latitude: %w", err)
	}

	return domain.RawSample{
		Date:      date,
		Longitude: lon,
		Latitude:  lat,
		Value:     domain.ParseValue(rec[idx.value], categorical),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%v outside [-%v, %v]", v, limit, limit)
	}
	return v, nil
}
