package domain

import "fmt"

// ParseError reports a malformed bulletin line or an unparsable numeric
// field in the record source. It is surfaced to the caller and never
// retried: the input is deterministic, so a retry would fail identically.
type ParseError struct {
	Line  int    // 1-based line number within the bulletin, 0 if unknown
	Field string // description of the offending field
	Err   error  // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse bulletin line %d: %s", e.Line, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvariantViolation reports input that breaks an ordering or bounds
// invariant the core algorithms depend on: a series not strictly ascending
// by timestamp, or a window with Start after End. Operations fail fast
// with this error instead of producing silently wrong windows.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}

// ValidateAscending checks that samples are strictly ordered by timestamp,
// returning an *InvariantViolation naming the first offending index.
func ValidateAscending(series []IntensitySample) error {
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			return &InvariantViolation{Reason: fmt.Sprintf(
				"series not strictly ascending at index %d: %s followed by %s",
				i, series[i-1].Timestamp.Format(timeLayout), series[i].Timestamp.Format(timeLayout),
			)}
		}
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05"
