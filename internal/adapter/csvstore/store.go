// Package csvstore reads and writes the Dst series and storm-window
// tables as CSV, the archive format shared with the analysis notebooks.
// Column names come from a domain.Schema value, never from package state.
package csvstore

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

// timeLayout matches the archive files written by the original analysis
// tooling: naive UTC timestamps without zone suffix.
const timeLayout = "2006-01-02 15:04:05"

// Store persists series and window tables under a fixed column schema.
type Store struct {
	schema domain.Schema
}

// New creates a Store. A zero schema falls back to the default columns.
func New(schema domain.Schema) *Store {
	if schema == (domain.Schema{}) {
		schema = domain.DefaultSchema()
	}
	return &Store{schema: schema}
}

// WriteSeries writes the hourly series as a two-column table.
func (s *Store) WriteSeries(path string, series []domain.IntensitySample) error {
	rows := make([][]string, 0, len(series)+1)
	rows = append(rows, []string{s.schema.Timestamp, s.schema.Intensity})
	for _, sample := range series {
		rows = append(rows, []string{
			sample.Timestamp.UTC().Format(timeLayout),
			strconv.FormatFloat(sample.NanoTesla, 'g', -1, 64),
		})
	}
	return writeAll(path, rows)
}

// ReadSeries reads an hourly series table. With absolute set, intensities
// are converted to absolute values, the convention the detection pipeline
// scans with. The returned series must satisfy the ascending-order
// contract; a shuffled file is rejected.
func (s *Store) ReadSeries(path string, absolute bool) ([]domain.IntensitySample, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndex(rows, s.schema.Timestamp, s.schema.Intensity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	series := make([]domain.IntensitySample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ts, err := time.ParseInLocation(timeLayout, row[cols[0]], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		nT, err := strconv.ParseFloat(row[cols[1]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		if absolute {
			nT = math.Abs(nT)
		}
		series = append(series, domain.IntensitySample{Timestamp: ts, NanoTesla: nT})
	}

	if err := domain.ValidateAscending(series); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// WriteWindows writes annotated windows as a three-column table.
func (s *Store) WriteWindows(path string, windows []domain.AnnotatedWindow) error {
	rows := make([][]string, 0, len(windows)+1)
	rows = append(rows, []string{s.schema.Start, s.schema.End, s.schema.Duration})
	for _, w := range windows {
		rows = append(rows, []string{
			w.Start.UTC().Format(timeLayout),
			w.End.UTC().Format(timeLayout),
			strconv.FormatFloat(w.DurationHours, 'g', -1, 64),
		})
	}
	return writeAll(path, rows)
}

// ReadWindows reads a window table. The duration column is ignored and
// recomputed from the start and end columns: duration is a projection of
// the bounds, and a stored value that drifted from them must not survive
// a round trip.
func (s *Store) ReadWindows(path string) ([]domain.AnnotatedWindow, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndex(rows, s.schema.Start, s.schema.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	windows := make([]domain.TimeWindow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		start, err := time.ParseInLocation(timeLayout, row[cols[0]], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		end, err := time.ParseInLocation(timeLayout, row[cols[1]], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		windows = append(windows, domain.TimeWindow{Start: start, End: end})
	}

	return domain.AnnotateDurations(windows), nil
}

func writeAll(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}
	return rows, nil
}

// columnIndex maps the requested column names to their positions in the
// header row.
func columnIndex(rows [][]string, names ...string) ([]int, error) {
	header := rows[0]
	indexes := make([]int, len(names))
	for i, name := range names {
		indexes[i] = -1
		for j, col := range header {
			if col == name {
				indexes[i] = j
				break
			}
		}
		if indexes[i] == -1 {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return indexes, nil
}
