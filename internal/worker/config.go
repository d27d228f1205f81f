// Package worker runs background jobs for SkyCast.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the periodic refresh job.
type RefreshConfig struct {
	// Interval between refreshes. Zero or negative disables the job.
	Interval time.Duration

	// Timeout bounds one refresh, geocoding and forecast included.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration; the job is
// disabled until an interval is set.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether the job should be scheduled.
func (c RefreshConfig) Enabled() bool {
	return c.Interval > 0
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultRefreshConfig().Timeout
	}
	return c
}
