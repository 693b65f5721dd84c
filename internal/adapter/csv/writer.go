package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

// Writer saves the linked table as a single CSV file.
// It implements pipeline.Loader.
type Writer struct {
	path     string
	decimals int
	logger   *slog.Logger
}

// NewWriter creates a Writer that prints coordinates with the precision of
// the grid resolution.
func NewWriter(path string, resolution float64, logger *slog.Logger) *Writer {
	return &Writer{
		path:     path,
		decimals: domain.Decimals(resolution),
		logger:   logger,
	}
}

// Load writes the table to a temporary file next to the target and renames
// it into place, so readers never see a partial file.
func (w *Writer) Load(ctx context.Context, run domain.RunInfo, table domain.Table) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".linkage-*.csv")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if err := w.write(ctx, tmp, table); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}

	w.logger.Info("linked table written", "run_id", run.ID, "path", w.path, "rows", len(table.Rows))
	return nil
}

func (w *Writer) write(ctx context.Context, f *os.File, table domain.Table) error {
	cw := stdcsv.NewWriter(f)

	header := append([]string{"date", "longitude", "latitude"}, table.Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(header))
	for i, row := range table.Rows {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		w.fillRecord(rec, row)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (w *Writer) fillRecord(rec []string, row domain.MatchedRow) {
	rec[0] = row.Date.Format("2006-01-02")
	rec[1] = strconv.FormatFloat(row.Lon, 'f', w.decimals, 64)
	rec[2] = strconv.FormatFloat(row.Lat, 'f', w.decimals, 64)
	rec[3] = row.Value.String()
	for j, v := range row.Overlays {
		rec[4+j] = v.String()
	}
}
