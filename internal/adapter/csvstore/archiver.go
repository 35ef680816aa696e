package csvstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

// File names of the archive written after each pipeline cycle.
const (
	SeriesFile  = "dst_index.csv"
	WindowsFile = "storm_windows.csv"
)

// Archiver writes the latest series and detected windows under a data
// directory. It implements pipeline.Archiver.
type Archiver struct {
	store   *Store
	dataDir string
	logger  *slog.Logger
}

// NewArchiver creates an Archiver rooted at dataDir, creating the
// directory if needed.
func NewArchiver(store *Store, dataDir string, logger *slog.Logger) (*Archiver, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Archiver{store: store, dataDir: dataDir, logger: logger}, nil
}

// Archive replaces the series and window tables with the latest cycle's
// results. Reports are reduced to their window columns; criterion and
// peak live on the Kafka topic, not in the archive contract.
func (a *Archiver) Archive(series []domain.IntensitySample, reports []domain.StormReport) error {
	if err := a.store.WriteSeries(filepath.Join(a.dataDir, SeriesFile), series); err != nil {
		return err
	}

	windows := make([]domain.AnnotatedWindow, len(reports))
	for i, r := range reports {
		windows[i] = domain.AnnotatedWindow{
			TimeWindow:    domain.TimeWindow{Start: r.Start, End: r.End},
			DurationHours: r.DurationHours,
		}
	}
	if err := a.store.WriteWindows(filepath.Join(a.dataDir, WindowsFile), windows); err != nil {
		return err
	}

	a.logger.Debug("archive written", "dir", a.dataDir, "samples", len(series), "windows", len(windows))
	return nil
}
