package pipeline

import (
	"fmt"
	"math"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

// Detector runs the storm-detection chain over one series: optional
// absolute-value normalization, threshold window extraction, gap merging,
// duration annotation, and peak lookup.
type Detector struct {
	criterion domain.Criterion
	pred      domain.Predicate
	gapDays   float64
	absolute  bool
}

// NewDetector builds a detector. gapDays <= 0 disables merging; absolute
// rectifies intensities before the predicate sees them (Dst storms are
// negative excursions, and thresholds are conventionally quoted as
// absolute magnitudes).
func NewDetector(criterion domain.Criterion, gapDays float64, absolute bool) (*Detector, error) {
	pred, err := criterion.Predicate()
	if err != nil {
		return nil, fmt.Errorf("build detector: %w", err)
	}
	return &Detector{
		criterion: criterion,
		pred:      pred,
		gapDays:   gapDays,
		absolute:  absolute,
	}, nil
}

// Criterion returns the detection criterion for logs and labels.
func (d *Detector) Criterion() domain.Criterion { return d.criterion }

// Detect returns one storm report per detected (merged) window. The input
// series is never modified; rectification works on a copy.
func (d *Detector) Detect(series []domain.IntensitySample) ([]domain.StormReport, error) {
	scan := series
	if d.absolute {
		scan = rectify(series)
	}

	windows, err := domain.ExtractWindows(scan, d.pred)
	if err != nil {
		return nil, err
	}
	if d.gapDays > 0 {
		windows, err = domain.MergeWindows(windows, d.gapDays)
		if err != nil {
			return nil, err
		}
	}

	reports := make([]domain.StormReport, 0, len(windows))
	for _, w := range domain.AnnotateDurations(windows) {
		peak, err := peakIntensity(scan, w.TimeWindow)
		if err != nil {
			return nil, err
		}
		reports = append(reports, domain.NewStormReport(w, d.criterion, peak))
	}
	return reports, nil
}

// rectify copies the series with intensities replaced by their absolute
// values.
func rectify(series []domain.IntensitySample) []domain.IntensitySample {
	out := make([]domain.IntensitySample, len(series))
	for i, s := range series {
		out[i] = domain.IntensitySample{Timestamp: s.Timestamp, NanoTesla: math.Abs(s.NanoTesla)}
	}
	return out
}

// peakIntensity returns the sample value of largest magnitude inside the
// window, in the same sign convention the scan used.
func peakIntensity(scan []domain.IntensitySample, w domain.TimeWindow) (float64, error) {
	span, err := domain.SamplesInRange(scan, w.Start, w.End)
	if err != nil {
		return 0, err
	}

	var peak float64
	for _, s := range span {
		if math.Abs(s.NanoTesla) > math.Abs(peak) {
			peak = s.NanoTesla
		}
	}
	return peak, nil
}
