package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the refresh job on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for job.
func NewScheduler(job *RefreshJob, logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  job.config.Interval,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the job and starts the underlying scheduler. The first run
// waits one interval. A disabled job schedules nothing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("periodic refresh disabled")
		return nil
	}

	// Runs never overlap; a slow provider delays the next tick instead.
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		s.job.Run(s.ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("periodic refresh scheduled")
	return nil
}

// Stop cancels a running refresh and stops future runs.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
