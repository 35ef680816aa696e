package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// StormReport is the event published for one detected (and possibly
// merged) storm window.
type StormReport struct {
	ID            string    `json:"id"`
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
	Criterion     string    `json:"criterion"`
	PeakNanoTesla float64   `json:"peak_nt"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewStormReport builds the report for an annotated window. peak is the
// extreme intensity observed inside the window, under the same sign
// convention the detector scanned with.
func NewStormReport(w AnnotatedWindow, criterion Criterion, peak float64) StormReport {
	return StormReport{
		ID:            windowID(criterion, w.Start, w.End),
		Start:         w.Start,
		End:           w.End,
		DurationHours: w.DurationHours,
		Criterion:     criterion.String(),
		PeakNanoTesla: peak,
		DetectedAt:    clock.Now(),
	}
}

// windowID produces a deterministic ID from the detection criterion and
// window bounds. Reprocessing the same bulletins yields the same IDs, so
// downstream consumers can deduplicate across pipeline runs.
func windowID(criterion Criterion, start, end time.Time) string {
	input := fmt.Sprintf("%s|%d|%d", criterion.String(), start.UTC().Unix(), end.UTC().Unix())
	hash := sha256.Sum256([]byte(input))
	return "storm-" + hex.EncodeToString(hash[:8])
}
