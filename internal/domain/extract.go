package domain

import "time"

// scanState is the extractor automaton state.
type scanState int

const (
	stateIdle scanState = iota // no window open, waiting for the predicate to match
	stateOpen                  // window open, waiting for the predicate to fail
)

// ExtractWindows scans an ordered series and returns the closed time
// windows during which pred held. Single forward pass, O(n).
//
// A window opens at the first matching sample and closes at the first
// non-matching sample after it; the closing sample's timestamp is the
// window end (see the package doc for the boundary policy). A window still
// open when the series ends is dropped, not emitted.
//
// The series must be strictly ascending by timestamp; otherwise an
// *InvariantViolation is returned and no windows are produced. The input
// is not modified and the result shares no storage with it.
func ExtractWindows(series []IntensitySample, pred Predicate) ([]TimeWindow, error) {
	if err := ValidateAscending(series); err != nil {
		return nil, err
	}

	var (
		windows []TimeWindow
		state   = stateIdle
		start   time.Time
	)

	for _, sample := range series {
		switch state {
		case stateIdle:
			if pred(sample.NanoTesla) {
				start = sample.Timestamp
				state = stateOpen
			}
		case stateOpen:
			if !pred(sample.NanoTesla) {
				windows = append(windows, TimeWindow{Start: start, End: sample.Timestamp})
				state = stateIdle
			}
		}
	}

	// A pending start with no observed end is discarded.
	return windows, nil
}
