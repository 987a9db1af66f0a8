package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

// healthPath is skipped by the request logger when healthy, so probes
// do not drown out real traffic.
const healthPath = "/healthz"

// slowRequestThreshold marks evaluations that took suspiciously long;
// chain building hits storage, so a slow request usually means a slow
// store, not a slow evaluator.
const slowRequestThreshold = 500 * time.Millisecond

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID, _ := r.Context().Value(correlationIDKey).(string)

		// request-scoped logger, handlers pick it up via log.Ctx
		l := log.With().
			Str("correlation_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		ctx := l.WithContext(r.Context())
		ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		if r.URL.Path == healthPath && ww.statusCode < 400 {
			return
		}

		elapsed := time.Since(start)
		evt := l.Info()
		if elapsed > slowRequestThreshold {
			evt = l.Warn().Bool("slow", true)
		}
		evt.
			Int("status", ww.statusCode).
			Dur("duration", elapsed).
			Msg("request.handled")
	})
}

func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic.recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
