package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

var errHijackUnsupported = errors.New("response writer does not support hijacking")

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64

	// started is set once the header is out or the connection was hijacked.
	started bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// asStatusWriter reuses a writer an outer middleware already wrapped.
func asStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return newStatusWriter(w)
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.started = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusWriter) Write(b []byte) (int, error) {
	rw.started = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack hands the connection to a websocket upgrader.
func (rw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}
	rw.statusCode = http.StatusSwitchingProtocols
	rw.started = true
	return h.Hijack()
}

func (rw *statusWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *statusWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// routePattern returns the chi route that matched r, so that metric and span
// names do not grow with every city in a path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
