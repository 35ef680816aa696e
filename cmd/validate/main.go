// Command validate performs integrity checks on a CSV archive written by the
// detection pipeline or the backfill command: the hourly series must parse
// and be strictly ascending, the stored windows must be well-formed, and
// re-running detection over the series must reproduce them.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/backfill -threshold 50 -gap-days 3
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/pipeline"
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

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the CSV archive")
	threshold := flag.Float64("threshold", 50, "storm threshold in nT used when the archive was written")
	gapDays := flag.Float64("gap-days", 3, "merge gap in days used when the archive was written")
	absolute := flag.Bool("abs", true, "whether the archive was scanned on absolute values")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *threshold, *gapDays, *absolute); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, threshold, gapDays float64, absolute bool) int {
	store := csvstore.New(domain.DefaultSchema())

	seriesPhase := &phase{name: "series file"}
	series, err := store.ReadSeries(filepath.Join(dataDir, csvstore.SeriesFile), false)
	if err != nil {
		seriesPhase.errorf("read series: %v", err)
	} else if len(series) == 0 {
		seriesPhase.errorf("series is empty")
	}

	windowsPhase := &phase{name: "windows file"}
	windows, err := store.ReadWindows(filepath.Join(dataDir, csvstore.WindowsFile))
	if err != nil {
		windowsPhase.errorf("read windows: %v", err)
	}
	for i, w := range windows {
		if w.End.Before(w.Start) {
			windowsPhase.errorf("window %d: end %s precedes start %s", i, w.End, w.Start)
		}
		if len(series) > 0 {
			if w.Start.Before(series[0].Timestamp) || w.End.After(series[len(series)-1].Timestamp) {
				windowsPhase.errorf("window %d: bounds outside series span", i)
			}
		}
	}

	consistencyPhase := &phase{name: "detection consistency"}
	if seriesPhase.passed() && windowsPhase.passed() {
		validateConsistency(consistencyPhase, series, windows, threshold, gapDays, absolute)
	} else {
		consistencyPhase.errorf("skipped: earlier phases failed")
	}

	exitCode := 0
	for _, p := range []*phase{seriesPhase, windowsPhase, consistencyPhase} {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		exitCode = 1
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return exitCode
}

// validateConsistency re-runs detection over the archived series and compares
// the result against the archived windows.
func validateConsistency(p *phase, series []domain.IntensitySample, windows []domain.AnnotatedWindow, threshold, gapDays float64, absolute bool) {
	detector, err := pipeline.NewDetector(
		domain.Criterion{Kind: domain.KindAbove, Threshold: threshold},
		gapDays,
		absolute,
	)
	if err != nil {
		p.errorf("build detector: %v", err)
		return
	}
	reports, err := detector.Detect(series)
	if err != nil {
		p.errorf("detect: %v", err)
		return
	}

	if len(reports) != len(windows) {
		p.errorf("archive has %d windows, detection found %d", len(windows), len(reports))
		return
	}
	for i := range reports {
		if !reports[i].Start.Equal(windows[i].Start) || !reports[i].End.Equal(windows[i].End) {
			p.errorf("window %d: archive [%s, %s] vs detected [%s, %s]", i,
				windows[i].Start.Format(time.DateTime), windows[i].End.Format(time.DateTime),
				reports[i].Start.Format(time.DateTime), reports[i].End.Format(time.DateTime))
		}
		if reports[i].DurationHours != windows[i].DurationHours {
			p.errorf("window %d: duration %.2fh vs detected %.2fh", i, windows[i].DurationHours, reports[i].DurationHours)
		}
	}
}
