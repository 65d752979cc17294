package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// ThreadIDHeader carries the id of the conversation thread a response
// belongs to.
const ThreadIDHeader = "X-Thread-ID"

// Logger returns middleware that logs each request once it completes, with
// its status, response size and, for thread responses, the thread id.
// Server errors log at error level and client errors at warn level.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w}

			next.ServeHTTP(rw, r)

			attrs := []any{
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rw.Status(),
				"bytes", rw.bytes,
				"addr", r.RemoteAddr,
				"duration", time.Since(start),
			}
			if id := w.Header().Get(ThreadIDHeader); id != "" {
				attrs = append(attrs, "thread_id", id)
			}

			level := slog.LevelInfo
			switch {
			case rw.Status() >= 500:
				level = slog.LevelError
			case rw.Status() >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}

// responseWriter records the status and size of a response. It forwards
// flushes so streamed responses keep working behind the logger.
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the response status, defaulting to 200 when the handler
// wrote nothing.
func (w *responseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
