// Package advisory fetches a short, best-effort weather tip for a location.
// Failures never leave this package: callers keep their placeholder.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one advisory request.
const DefaultTimeout = 15 * time.Second

var errEmptyAdvice = errors.New("generator returned no text")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder observes fetch outcomes.
type Recorder interface {
	RecordFetch(ok bool)
}

// Config holds configuration for the advisor.
type Config struct {
	// Generator is optional; without one every fetch fails quietly.
	Generator Generator

	// Timeout bounds one request (default: DefaultTimeout).
	Timeout time.Duration

	// Logger for advisory failures.
	Logger zerolog.Logger

	// Recorder is optional.
	Recorder Recorder
}

// Advisor fetches advisory text.
type Advisor struct {
	generator Generator
	timeout   time.Duration
	logger    zerolog.Logger
	recorder  Recorder
}

// New creates an advisor.
func New(cfg Config) *Advisor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Advisor{
		generator: cfg.Generator,
		timeout:   timeout,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
	}
}

// Prompt builds the request for one location and reading.
func Prompt(city string, temp int, condition string) string {
	return fmt.Sprintf("Weather in %s: %d degrees, %s. Give one very short useful tip (under 10 words).",
		city, temp, condition)
}

// Fetch returns trimmed advisory text, or false when anything went wrong.
func (a *Advisor) Fetch(ctx context.Context, city string, temp int, condition string) (string, bool) {
	if a.generator == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generate(ctx, Prompt(city, temp, condition))
	if a.recorder != nil {
		a.recorder.RecordFetch(err == nil)
	}
	if err != nil {
		a.logger.Debug().Err(err).Str("city", city).Msg("advisory unavailable")
		return "", false
	}
	return text, true
}

func (a *Advisor) generate(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	text, err = a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyAdvice
	}
	return text, nil
}
