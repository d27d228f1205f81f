// Package resilience wraps outbound provider calls with rate limiting,
// retries, circuit breaking and health tracking.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig tunes the breaker of one provider client.
type CircuitBreakerConfig struct {
	// Name is the provider name the breaker reports state changes under.
	Name string

	// MaxRequests is how many trial requests pass while half-open. Default: 1
	MaxRequests uint32

	// Interval clears the counts while closed; zero keeps them until the
	// state changes.
	Interval time.Duration

	// Timeout is how long the breaker stays open before a trial request. Default: 60s
	Timeout time.Duration

	// ReadyToTrip decides when to open. Default: DefaultReadyToTrip
	ReadyToTrip func(counts gobreaker.Counts) bool

	// IsSuccessful classifies a call error. Default: CallerGaveUp
	IsSuccessful func(err error) bool

	// OnStateChange is called when the breaker changes state.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the breaker used unless a provider
// package supplies its own tuning.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Timeout:      60 * time.Second,
		ReadyToTrip:  DefaultReadyToTrip,
		IsSuccessful: CallerGaveUp,
	}
}

// DefaultReadyToTrip opens after at least 5 requests with a failure rate of
// 50% or more.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

// TripAfterConsecutive opens after n failures in a row.
func TripAfterConsecutive(n uint32) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= n
	}
}

// CallerGaveUp treats a cancelled call as a success for the breaker: a
// superseded search or a closed session is not the provider's fault.
// Deadlines still count as failures.
func CallerGaveUp(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// NewCircuitBreaker creates a breaker from cfg.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		IsSuccessful:  cfg.IsSuccessful,
		OnStateChange: cfg.OnStateChange,
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = DefaultReadyToTrip
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = CallerGaveUp
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
