package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// RequestIDHeader carries the request ID back to the client.
const RequestIDHeader = "X-Request-ID"

// SlowRequest is the duration above which a request is logged as slow.
var SlowRequest = 1 * time.Second

// responseWriter is a minimal wrapper for http.ResponseWriter that allows the
// written HTTP status code to be captured for logging.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) Status() int {
	return rw.status
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(body []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(body)
}

// LoggingMiddleware logs the incoming HTTP request & its duration.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			defer func() {
				if err := recover(); err != nil {
					wrapped.WriteHeader(http.StatusInternalServerError)
					logger.Error("Internal Server Error",
						zap.Any("panic", err),
						zap.String("stack", string(debug.Stack())),
					)
				}

				duration := time.Since(start)
				logger.Debug("Request completed",
					zap.String("request_id", RequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.EscapedPath()),
					zap.Int("status", wrapped.Status()),
					zap.Duration("duration", duration),
					zap.String("client_ip", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()),
					zap.Object("headers", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
						for k, v := range r.Header {
							enc.AddString(k, fmt.Sprintf("%v", v))
						}
						return nil
					})),
				)

				if duration > SlowRequest {
					logger.Warn("Slow request",
						zap.String("method", r.Method),
						zap.String("path", r.URL.EscapedPath()),
						zap.Duration("duration", duration),
					)
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID and a request-scoped logger to
// each request.
func RequestIDMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()
			w.Header().Set(RequestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			ctx = context.WithValue(ctx, loggerKey, logger.With(zap.String("request_id", requestID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID returns the ID set by RequestIDMiddleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger returns the request-scoped logger, or fallback.
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

func generateRequestID() string {
	return "req-" + uuid.New().String()
}
