package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/worker"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (f *fakeRefresher) Refresh(ctx context.Context) (session.View, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return session.View{}, ctx.Err()
		}
	}
	if f.err != nil {
		return session.View{}, f.err
	}
	return session.View{Query: "Hanoi", Generation: uint64(n)}, nil
}

func newJob(r worker.Refresher, cfg worker.RefreshConfig) *worker.RefreshJob {
	return worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    cfg,
		Logger:    zerolog.Nop(),
		Refresher: r,
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.Interval)
	assert.False(t, cfg.Enabled())

	cfg.Interval = time.Minute
	assert.True(t, cfg.Enabled())
}

func TestRefreshJob_Run_Success(t *testing.T) {
	r := &fakeRefresher{}
	job := newJob(r, worker.DefaultRefreshConfig())

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.False(t, result.Skipped)
	assert.Empty(t, result.Error)
	assert.Equal(t, "Hanoi", result.Query)
	assert.False(t, result.EndTime.Before(result.StartTime))

	m := job.GetMetrics()
	assert.Equal(t, int64(1), m.TotalRefreshes)
	assert.Equal(t, int64(1), m.SuccessfulRefresh)
	assert.Zero(t, m.FailedRefreshes)
	assert.Zero(t, m.SkippedRefreshes)
}

func TestRefreshJob_Run_SkipsWithoutPreviousQuery(t *testing.T) {
	r := &fakeRefresher{err: session.ErrNoPreviousQuery}
	job := newJob(r, worker.DefaultRefreshConfig())

	result := job.Run(context.Background())

	assert.True(t, result.Skipped)
	assert.Empty(t, result.Error)

	m := job.GetMetrics()
	assert.Equal(t, int64(1), m.SkippedRefreshes)
	assert.Zero(t, m.FailedRefreshes)
}

func TestRefreshJob_Run_Failure(t *testing.T) {
	r := &fakeRefresher{err: errors.New("upstream down")}
	job := newJob(r, worker.DefaultRefreshConfig())

	result := job.Run(context.Background())

	assert.False(t, result.Skipped)
	assert.Equal(t, "upstream down", result.Error)
	assert.Empty(t, result.Query)
	assert.Equal(t, int64(1), job.GetMetrics().FailedRefreshes)
}

func TestRefreshJob_Run_Timeout(t *testing.T) {
	r := &fakeRefresher{delay: time.Second}
	job := newJob(r, worker.RefreshConfig{Timeout: 20 * time.Millisecond})

	result := job.Run(context.Background())

	assert.Contains(t, result.Error, context.DeadlineExceeded.Error())
	assert.Less(t, result.Duration, time.Second)
}

func TestRefreshJob_LastErrorClearsOnSuccess(t *testing.T) {
	r := &fakeRefresher{err: errors.New("upstream down")}
	job := newJob(r, worker.DefaultRefreshConfig())

	job.Run(context.Background())
	assert.Equal(t, "upstream down", job.GetMetrics().LastError)

	r.err = nil
	job.Run(context.Background())

	m := job.GetMetrics()
	assert.Empty(t, m.LastError)
	assert.Equal(t, int64(2), m.TotalRefreshes)
	assert.False(t, m.LastRefreshAt.IsZero())
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	r := &fakeRefresher{}
	job := newJob(r, worker.RefreshConfig{Interval: 50 * time.Millisecond, Timeout: time.Second})

	s := worker.NewScheduler(job, zerolog.Nop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return r.calls.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestScheduler_Disabled(t *testing.T) {
	r := &fakeRefresher{}
	job := newJob(r, worker.DefaultRefreshConfig())

	s := worker.NewScheduler(job, zerolog.Nop())
	require.NoError(t, s.Start())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.Zero(t, r.calls.Load())
}

func TestScheduler_StopCancelsRunningRefresh(t *testing.T) {
	r := &fakeRefresher{delay: 10 * time.Second}
	job := newJob(r, worker.RefreshConfig{Interval: 20 * time.Millisecond, Timeout: 30 * time.Second})

	s := worker.NewScheduler(job, zerolog.Nop())
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool {
		return r.calls.Load() >= 1
	}, 3*time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
