// Package domain models the hourly Dst (disturbance storm time) index and
// the storm-window detection that runs over it.
//
// # Data Source
//
// Dst readings originate from the WDC for Geomagnetism, Kyoto, which
// publishes one fixed-width bulletin per month with 24 hourly nanotesla
// values per line. The wdc adapter fetches and parses those bulletins into
// an ordered []IntensitySample; this package never touches the wire format.
//
// # Ordering Invariant
//
// Every series handed to ExtractWindows or SamplesInRange must be strictly
// ascending by timestamp, and every window sequence handed to MergeWindows
// must be sorted by start with Start <= End. Violations are reported as
// [*InvariantViolation] before any scanning begins; the algorithms never
// attempt to repair unordered input.
//
// # Window Boundary Policy
//
// A window opens at the first sample whose intensity satisfies the
// predicate and closes at the first subsequent sample that does not.
// The closing sample's own timestamp becomes the window end. A series that
// ends while a window is still open produces no window for that span:
// without an observed end the extent of the storm is unknown, so the
// pending start is discarded rather than emitted half-open.
//
// # Gap Merging
//
// Two windows separated by strictly less than the configured number of
// days (fractional days allowed) collapse into one, keeping the earlier
// start and the later end. Merging a merged sequence again with the same
// gap is a no-op.
//
// # Sign Convention
//
// Dst is negative during storm main phase. The detection pipeline usually
// works on absolute values, but this package is agnostic: predicates see
// whatever sign convention the caller supplies.
package domain
