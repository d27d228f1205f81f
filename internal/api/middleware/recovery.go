package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/models"
)

// Recovery returns a middleware that turns a handler panic into a 500 problem.
//
// http.ErrAbortHandler is re-raised so the server drops the connection
// quietly. When the response has already started (a view was partly written
// or a stream was hijacked) nothing more is written; the panic is only logged.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := asStatusWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Bool("response_started", sw.started).
					Interface("error", rec).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				if sw.started {
					return
				}
				problem := models.NewInternalError(requestID, "an unexpected error occurred")
				problem.Instance = r.URL.Path
				problem.Write(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
