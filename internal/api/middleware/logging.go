package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger writes one line per request once the handler returns. Upstream
// failures (5xx) are logged at warn; a view stream is logged when the
// websocket closes.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := asStatusWriter(w)

			next.ServeHTTP(sw, r)

			event := log.Info()
			if sw.statusCode >= http.StatusInternalServerError {
				event = log.Warn()
			}

			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				event = event.
					Str("trace_id", sc.TraceID().String()).
					Str("span_id", sc.SpanID().String())
			}

			msg := "request completed"
			if sw.statusCode == http.StatusSwitchingProtocols {
				msg = "stream closed"
			}

			event.
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", sw.statusCode).
				Int64("bytes", sw.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg(msg)
		})
	}
}
