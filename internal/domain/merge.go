package domain

import "fmt"

const hoursPerDay = 24

// MergeWindows coalesces windows separated by strictly less than gapDays
// days into one. gapDays may be fractional; the gap is measured as a real
// number of days, never truncated. The input must be sorted by start
// ascending with Start <= End on every window (as ExtractWindows emits),
// otherwise an *InvariantViolation is returned.
//
// The first window is placed in the accumulator before any gap is
// computed, so no comparison against a nonexistent predecessor occurs.
// When a window merges, only the accumulated end advances; it never moves
// backward, which keeps the operation idempotent. Zero or one window is
// returned unchanged (in a fresh slice; output never aliases input).
func MergeWindows(windows []TimeWindow, gapDays float64) ([]TimeWindow, error) {
	if err := validateWindows(windows); err != nil {
		return nil, err
	}

	merged := make([]TimeWindow, 0, len(windows))
	for _, w := range windows {
		if len(merged) == 0 {
			merged = append(merged, w)
			continue
		}

		last := &merged[len(merged)-1]
		gap := w.Start.Sub(last.End).Hours() / hoursPerDay
		if gap < gapDays {
			if w.End.After(last.End) {
				last.End = w.End
			}
		} else {
			merged = append(merged, w)
		}
	}
	return merged, nil
}

// validateWindows checks start ordering and per-window bounds.
func validateWindows(windows []TimeWindow) error {
	for i, w := range windows {
		if w.Start.After(w.End) {
			return &InvariantViolation{Reason: fmt.Sprintf(
				"window %d has start %s after end %s",
				i, w.Start.Format(timeLayout), w.End.Format(timeLayout),
			)}
		}
		if i > 0 && w.Start.Before(windows[i-1].Start) {
			return &InvariantViolation{Reason: fmt.Sprintf(
				"windows not sorted by start at index %d", i,
			)}
		}
	}
	return nil
}
