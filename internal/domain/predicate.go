package domain

import "fmt"

// Predicate decides whether an intensity value keeps a storm window open.
type Predicate func(nT float64) bool

// Above matches intensities strictly greater than threshold.
func Above(threshold float64) Predicate {
	return func(nT float64) bool { return nT > threshold }
}

// Below matches intensities strictly less than threshold.
func Below(threshold float64) Predicate {
	return func(nT float64) bool { return nT < threshold }
}

// Between matches intensities within [lower, upper], both bounds inclusive.
func Between(lower, upper float64) Predicate {
	return func(nT float64) bool { return lower <= nT && nT <= upper }
}

// CriterionKind selects which predicate a Criterion builds.
type CriterionKind string

const (
	KindAbove   CriterionKind = "above"
	KindBelow   CriterionKind = "below"
	KindBetween CriterionKind = "between"
)

// Criterion is the configuration value behind a Predicate. Above and Below
// use Threshold; Between uses Lower and Upper.
type Criterion struct {
	Kind      CriterionKind
	Threshold float64
	Lower     float64
	Upper     float64
}

// Predicate builds the predicate for the criterion.
func (c Criterion) Predicate() (Predicate, error) {
	switch c.Kind {
	case KindAbove:
		return Above(c.Threshold), nil
	case KindBelow:
		return Below(c.Threshold), nil
	case KindBetween:
		if c.Lower > c.Upper {
			return nil, fmt.Errorf("criterion bounds inverted: lower %g > upper %g", c.Lower, c.Upper)
		}
		return Between(c.Lower, c.Upper), nil
	default:
		return nil, fmt.Errorf("unknown criterion kind %q", c.Kind)
	}
}

// String renders the criterion for report labels and logs, e.g.
// "above 50 nT" or "between 50 and 150 nT".
func (c Criterion) String() string {
	switch c.Kind {
	case KindAbove, KindBelow:
		return fmt.Sprintf("%s %g nT", c.Kind, c.Threshold)
	case KindBetween:
		return fmt.Sprintf("between %g and %g nT", c.Lower, c.Upper)
	default:
		return string(c.Kind)
	}
}
