// Command genmock regenerates the synthetic WDC bulletin fixture used by the
// parser tests, plus the storm windows the detector is expected to find in
// it. The fixture covers April 2024 with a quiet baseline of -10 nT and two
// negative excursions close enough to merge.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -bulletin-out internal/adapter/wdc/testdata/dst2404.for.request \
//	  -windows-out data/mock/expected_windows.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/couchcryptid/dst-index-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/dst-index-etl/internal/adapter/wdc"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	bulletinOut := flag.String("bulletin-out", "", "output path for the bulletin fixture")
	windowsOut := flag.String("windows-out", "", "output path for the expected windows CSV")
	flag.Parse()

	if *bulletinOut == "" || *windowsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -bulletin-out, -windows-out")
	}

	text := bulletinText()
	if err := os.WriteFile(*bulletinOut, []byte(text), 0o644); err != nil {
		return err
	}

	series, err := wdc.ParseBulletin(text)
	if err != nil {
		return fmt.Errorf("generated bulletin does not parse: %w", err)
	}

	detector, err := pipeline.NewDetector(domain.Criterion{Kind: domain.KindAbove, Threshold: 50}, 2, true)
	if err != nil {
		return err
	}
	reports, err := detector.Detect(series)
	if err != nil {
		return err
	}

	windows := make([]domain.TimeWindow, len(reports))
	for i, r := range reports {
		windows[i] = domain.TimeWindow{Start: r.Start, End: r.End}
	}
	store := csvstore.New(domain.DefaultSchema())
	if err := store.WriteWindows(*windowsOut, domain.AnnotateDurations(windows)); err != nil {
		return err
	}

	log.Printf("wrote %s (%d samples) and %s (%d windows)", *bulletinOut, len(series), *windowsOut, len(reports))
	return nil
}

// bulletinText renders April 2024 in the WDC realtime format: one line per
// day, hourly values as 4-character fields starting at column 20, followed
// by the daily mean.
func bulletinText() string {
	var b strings.Builder
	for day := 1; day <= 30; day++ {
		prefix := fmt.Sprintf("DST2404*%02dRRX020", day)
		b.WriteString(prefix)
		b.WriteString(strings.Repeat(" ", 20-len(prefix)))

		sum := 0
		for hour := 0; hour < 24; hour++ {
			v := valueAt(day, hour)
			sum += v
			fmt.Fprintf(&b, "%4d", v)
		}
		fmt.Fprintf(&b, "%4d", sum/24)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func valueAt(day, hour int) int {
	switch {
	case day == 10 && hour >= 6 && hour <= 20:
		return -100
	case day == 12 && hour <= 10:
		return -80
	default:
		return -10
	}
}
