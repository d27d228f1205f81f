package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/session"
)

// Refresher re-runs the search on display.
type Refresher interface {
	Refresh(ctx context.Context) (session.View, error)
}

// RefreshJob re-runs the active search of a session.
type RefreshJob struct {
	config    RefreshConfig
	logger    zerolog.Logger
	refresher Refresher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	SkippedRefreshes  int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration

	// LastError is empty unless the latest run failed.
	LastError string
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Refresher Refresher
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		refresher: cfg.Refresher,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of one refresh.
type RefreshResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Skipped is set when no search has succeeded yet.
	Skipped bool

	// Query is the refreshed query, empty when skipped or failed.
	Query string
	Error string
}

// Run refreshes once. Failures leave the session's model in place and are
// only reported in the result.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	view, err := j.refresher.Refresh(ctx)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	switch {
	case errors.Is(err, session.ErrNoPreviousQuery):
		result.Skipped = true
		j.logger.Debug().Msg("refresh skipped: nothing searched yet")
	case err != nil:
		result.Error = err.Error()
		j.logger.Warn().Err(err).Dur("duration", result.Duration).Msg("refresh failed")
	default:
		result.Query = view.Query
		j.logger.Info().
			Str("query", view.Query).
			Uint64("generation", view.Generation).
			Dur("duration", result.Duration).
			Msg("refresh completed")
	}

	j.updateMetrics(result)
	return result
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	switch {
	case result.Skipped:
		j.metrics.SkippedRefreshes++
	case result.Error != "":
		j.metrics.FailedRefreshes++
	default:
		j.metrics.SuccessfulRefresh++
	}
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
	j.metrics.LastError = result.Error
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		SkippedRefreshes:    j.metrics.SkippedRefreshes,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
		LastError:           j.metrics.LastError,
	}
}
