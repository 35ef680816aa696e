package domain

import "time"

// IntensitySample is one hourly Dst reading.
type IntensitySample struct {
	Timestamp time.Time `json:"timestamp"`
	NanoTesla float64   `json:"nt"`
}

// TimeWindow is a closed interval [Start, End] during which every sample
// satisfied a threshold predicate. Start <= End always holds for windows
// produced by this package.
type TimeWindow struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// AnnotatedWindow is a TimeWindow with its derived hour span. DurationHours
// is a projection of Start and End, recomputed by AnnotateDurations; it is
// never read back from storage.
type AnnotatedWindow struct {
	TimeWindow
	DurationHours float64 `json:"duration_hours"`
}

// Schema names the columns of the tabular adapters. It is passed by value
// to I/O code so callers with legacy files can rename columns without
// touching package state.
type Schema struct {
	Timestamp string
	Intensity string
	Start     string
	End       string
	Duration  string
}

// DefaultSchema returns the column names used by the WDC archive files.
func DefaultSchema() Schema {
	return Schema{
		Timestamp: "TIMESTAMP",
		Intensity: "nT",
		Start:     "STARTTIME",
		End:       "ENDTIME",
		Duration:  "DURATION_HOURS",
	}
}

// Month identifies one monthly bulletin.
type Month struct {
	Year  int
	Month time.Month
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the month (UTC).
func (m Month) Contains(t time.Time) bool {
	t = t.UTC()
	return t.Year() == m.Year && t.Month() == m.Month
}

// MonthsBack returns the n months ending at the month containing now,
// oldest first, so bulletins concatenate in chronological order.
func MonthsBack(now time.Time, n int) []Month {
	if n <= 0 {
		return nil
	}
	months := make([]Month, n)
	first := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		months[i] = Month{Year: first.Year(), Month: first.Month()}
		first = first.AddDate(0, -1, 0)
	}
	return months
}
