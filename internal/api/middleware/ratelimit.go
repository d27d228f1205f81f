package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/skycast/skycast/internal/api/models"
)

// RateLimitConfig is a per-client request budget for one group of routes.
type RateLimitConfig struct {
	// Noun names the limited requests in the problem detail. Default: "requests"
	Noun         string
	RequestLimit int
	WindowLength time.Duration
}

var (
	// SearchRateLimit covers routes that reach the upstream providers.
	SearchRateLimit = RateLimitConfig{
		Noun:         "searches",
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit covers the remaining session routes.
	StandardRateLimit = RateLimitConfig{
		Noun:         "requests",
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP limits each client IP to cfg. Behind a proxy, chi's RealIP
// must run first.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(cfg)),
	)
}

// limitExceeded answers with a too-many-requests problem. httprate does not
// expose the reset time, so Retry-After is one full window.
func limitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := int(math.Ceil(cfg.WindowLength.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	noun := cfg.Noun
	if noun == "" {
		noun = "requests"
	}
	detail := fmt.Sprintf("Rate limit exceeded: at most %d %s every %d seconds.", cfg.RequestLimit, noun, retryAfter)

	return func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewTooManyRequests(GetRequestID(r.Context()), detail)
		problem.Instance = r.URL.Path
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		problem.Write(w)
	}
}
