package domain

import (
	"sort"
	"time"
)

// SamplesInRange returns the samples whose timestamps fall within
// [from, to], inclusive of both bounds. The series must be strictly
// ascending by timestamp; the lookup is O(log n + k) via binary search.
// The result is a copy and shares no storage with the input.
func SamplesInRange(series []IntensitySample, from, to time.Time) ([]IntensitySample, error) {
	if err := ValidateAscending(series); err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, nil
	}

	lo := sort.Search(len(series), func(i int) bool {
		return !series[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp.After(to)
	})

	out := make([]IntensitySample, hi-lo)
	copy(out, series[lo:hi])
	return out, nil
}
