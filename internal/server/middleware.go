package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	goamiddleware "goa.design/goa/v3/middleware"

	"portfolio/internal/config"
	"portfolio/internal/services"
)

// setupSecurityHeaders adds security headers to responses
func setupSecurityHeaders(handler http.Handler, debugMode bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// HSTS only when served over TLS outside debug mode
		if !debugMode && r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		handler.ServeHTTP(w, r)
	})
}

// setupCORS allows the configured client origin with credentials. Any
// OPTIONS request is answered here as a preflight. In debug mode the
// request origin is reflected instead.
func setupCORS(handler http.Handler, cfg config.CORSConfig, debugMode bool) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ",")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := cfg.ClientURL
		if reqOrigin := r.Header.Get("Origin"); debugMode && reqOrigin != "" {
			origin = reqOrigin
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")

		if r.Method != http.MethodOptions {
			handler.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", methods)
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
			h.Add("Vary", "Access-Control-Request-Headers")
		}
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		h.Set("Content-Length", "0")
		w.WriteHeader(http.StatusNoContent)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// requestLogging logs every request with its outcome and echoes the request
// id. Health checks are logged at debug level.
func requestLogging(handler http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r.Context())
		if id != "" {
			w.Header().Set("X-Request-Id", id)
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler.ServeHTTP(wrapped, r)

		ev := log.Info()
		switch {
		case r.URL.Path == "/api/health":
			ev = log.Debug()
		case wrapped.statusCode >= http.StatusInternalServerError:
			ev = log.Warn()
		}
		ev.Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// recoverer turns a handler panic into the generic 500 envelope. When the
// handler already started its response the connection is aborted instead,
// so the client never sees the envelope glued onto a partial body.
func recoverer(handler http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Str("request_id", requestID(r.Context())).
				Interface("panic", rec).
				Bool("response_started", wrapped.wroteHeader).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")

			if wrapped.wroteHeader {
				panic(http.ErrAbortHandler)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"` + services.MsgInternal + `"}` + "\n"))
		}()
		handler.ServeHTTP(wrapped, r)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(goamiddleware.RequestIDKey).(string)
	return id
}
