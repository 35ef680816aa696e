// Command backfill runs one detection pass over a historical month range and
// writes the hourly series and detected storm windows as CSV files.
//
// Usage:
//
//	go run ./cmd/backfill -from 2024-01 -to 2024-04 -out data/backfill
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/dst-index-etl/internal/adapter/wdc"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
	"github.com/couchcryptid/dst-index-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	from := flag.String("from", "", "first month to fetch (YYYY-MM)")
	to := flag.String("to", "", "last month to fetch (YYYY-MM), inclusive")
	out := flag.String("out", "data/backfill", "output directory for CSV files")
	baseURL := flag.String("base-url", wdc.DefaultBaseURL, "WDC Kyoto base URL")
	threshold := flag.Float64("threshold", 50, "storm threshold in nT")
	gapDays := flag.Float64("gap-days", 3, "merge windows closer than this many days; 0 disables merging")
	absolute := flag.Bool("abs", true, "scan absolute intensity values")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request fetch timeout")
	flag.Parse()

	if *from == "" || *to == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -from, -to")
	}
	months, err := monthRange(*from, *to)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()
	source := wdc.NewSource(wdc.NewClient(*baseURL, *timeout, logger, metrics), logger)

	detector, err := pipeline.NewDetector(
		domain.Criterion{Kind: domain.KindAbove, Threshold: *threshold},
		*gapDays,
		*absolute,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	series, err := source.FetchSeries(ctx, months)
	if err != nil {
		return err
	}
	reports, err := detector.Detect(series)
	if err != nil {
		return err
	}

	archiver, err := csvstore.NewArchiver(csvstore.New(domain.DefaultSchema()), *out, logger)
	if err != nil {
		return err
	}
	if err := archiver.Archive(series, reports); err != nil {
		return err
	}

	log.Printf("fetched %d samples across %d months", len(series), len(months))
	for _, r := range reports {
		log.Printf("storm %s: %s to %s (%.1fh, peak %.0f nT)",
			r.ID, r.Start.Format(time.DateTime), r.End.Format(time.DateTime), r.DurationHours, r.PeakNanoTesla)
	}
	log.Printf("wrote %s and %s", filepath.Join(*out, csvstore.SeriesFile), filepath.Join(*out, csvstore.WindowsFile))
	return nil
}

// monthRange expands an inclusive YYYY-MM range into ordered months.
func monthRange(from, to string) ([]domain.Month, error) {
	start, err := parseMonth(from)
	if err != nil {
		return nil, err
	}
	end, err := parseMonth(to)
	if err != nil {
		return nil, err
	}
	if end.First().Before(start.First()) {
		return nil, fmt.Errorf("-to %s precedes -from %s", to, from)
	}

	var months []domain.Month
	for t := start.First(); !t.After(end.First()); t = t.AddDate(0, 1, 0) {
		months = append(months, domain.Month{Year: t.Year(), Month: t.Month()})
	}
	return months, nil
}

func parseMonth(s string) (domain.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return domain.Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return domain.Month{Year: t.Year(), Month: t.Month()}, nil
}
