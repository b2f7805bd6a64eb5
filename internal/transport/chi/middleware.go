package chi

import (
	"context"
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/searchr/internal/logger"
)

// JSONRecoverer turns a handler panic into a 500 error envelope. The panic
// is logged through the request logger once WideEventMiddleware has set one.
func JSONRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slot := new(*zap.Logger)
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // chi compares the sentinel the same way
					panic(rvr)
				}
				log := logger
				if *slot != nil {
					log = *slot
				}
				log.Error("http_panic_recovered",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestLoggerKey{}, slot)))
		})
	}
}

// requestLoggerKey holds a **zap.Logger slot the recoverer reads after a panic.
type requestLoggerKey struct{}

// WideEventMiddleware emits one canonical log line per request and echoes
// X-Request-ID. Server errors log at error level and client errors at warn.
// chi's RequestID middleware must run first.
func WideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			if slot, ok := r.Context().Value(requestLoggerKey{}).(**zap.Logger); ok {
				*slot = reqLogger
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", routePattern(r)),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if q := r.URL.Query().Get("query"); q != "" {
				fields = append(fields, zap.String("search_query", q))
			}
			if ce := reqLogger.Check(levelFor(status), "http_request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func routePattern(r *http.Request) string {
	if rctx := gochi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
