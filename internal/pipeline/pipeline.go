// Package pipeline orchestrates the fetch-detect-publish loop.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// SeriesSource supplies the ordered Dst series for a set of months.
type SeriesSource interface {
	FetchSeries(ctx context.Context, months []domain.Month) ([]domain.IntensitySample, error)
}

// ReportSink receives the storm reports of one detection cycle.
type ReportSink interface {
	PublishReports(ctx context.Context, reports []domain.StormReport) error
}

// Archiver persists the series and reports of one detection cycle.
type Archiver interface {
	Archive(series []domain.IntensitySample, reports []domain.StormReport) error
}

// Options tunes the pipeline loop.
type Options struct {
	PollInterval   time.Duration
	LookbackMonths int
	Clock          clockwork.Clock // nil means real time
}

// Pipeline periodically fetches the recent bulletin months, runs storm
// detection, archives the results, and publishes the detected windows.
type Pipeline struct {
	source   SeriesSource
	detector *Detector
	sink     ReportSink // nil disables publishing
	archiver Archiver   // nil disables archiving
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	pollInterval   time.Duration
	lookbackMonths int

	ready  atomic.Bool
	mu     sync.RWMutex
	latest []domain.StormReport
}

// New creates a Pipeline with the given stages and observability.
func New(source SeriesSource, detector *Detector, sink ReportSink, archiver Archiver, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:         source,
		detector:       detector,
		sink:           sink,
		archiver:       archiver,
		logger:         logger,
		metrics:        metrics,
		clock:          clock,
		pollInterval:   opts.PollInterval,
		lookbackMonths: opts.LookbackMonths,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// detection cycle, or an error describing why the service is not ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a detection cycle yet")
	}
	return nil
}

// LatestReports returns the storm reports of the most recent cycle.
func (p *Pipeline) LatestReports() []domain.StormReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.StormReport(nil), p.latest...)
}

// Run executes the poll-detect-publish loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"criterion", p.detector.Criterion().String(),
		"poll_interval", p.pollInterval,
		"lookback_months", p.lookbackMonths,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during WDC or
	// Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if err := p.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("detection cycle failed", "error", err)
			p.metrics.DetectErrors.Inc()
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond
		p.ready.Store(true)

		if !sleepWithContext(ctx, p.pollInterval) {
			return nil
		}
	}
}

// runCycle performs one fetch-detect-archive-publish pass.
func (p *Pipeline) runCycle(ctx context.Context) error {
	start := time.Now()

	months := domain.MonthsBack(p.clock.Now(), p.lookbackMonths)
	series, err := p.source.FetchSeries(ctx, months)
	if err != nil {
		return err
	}
	p.metrics.SamplesIngested.Add(float64(len(series)))

	reports, err := p.detector.Detect(series)
	if err != nil {
		return err
	}
	p.metrics.WindowsDetected.Add(float64(len(reports)))

	if p.archiver != nil {
		if err := p.archiver.Archive(series, reports); err != nil {
			return err
		}
	}
	if p.sink != nil {
		if err := p.sink.PublishReports(ctx, reports); err != nil {
			return err
		}
		p.metrics.ReportsPublished.Add(float64(len(reports)))
	}

	p.setLatest(reports)
	p.metrics.DetectDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("detection cycle complete",
		"months", len(months),
		"samples", len(series),
		"windows", len(reports),
	)
	return nil
}

func (p *Pipeline) setLatest(reports []domain.StormReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = reports
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
