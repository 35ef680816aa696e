package wdc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
)

// Source assembles a contiguous Dst series from monthly bulletins. It
// implements pipeline.SeriesSource and guarantees the record-source
// contract: the returned series is strictly ascending by timestamp.
type Source struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewSource creates a series source over a bulletin fetcher.
func NewSource(fetcher Fetcher, logger *slog.Logger) *Source {
	return &Source{fetcher: fetcher, logger: logger}
}

// FetchSeries fetches and parses the given months in order and returns
// the concatenated hourly series. Months must be supplied oldest first,
// as domain.MonthsBack produces them; any ordering defect in the fetched
// bulletins surfaces as a *domain.InvariantViolation rather than leaking
// an unsorted series downstream.
func (s *Source) FetchSeries(ctx context.Context, months []domain.Month) ([]domain.IntensitySample, error) {
	var series []domain.IntensitySample

	for _, m := range months {
		text, err := s.fetcher.FetchMonth(ctx, m)
		if err != nil {
			return nil, err
		}
		samples, err := ParseBulletin(text)
		if err != nil {
			return nil, fmt.Errorf("bulletin %s: %w", m, err)
		}
		s.logger.Debug("bulletin parsed", "month", m.String(), "samples", len(samples))
		series = append(series, samples...)
	}

	// Enforce the ascending-order contract across month boundaries before
	// the series reaches the detection core.
	if err := domain.ValidateAscending(series); err != nil {
		return nil, err
	}
	return series, nil
}
