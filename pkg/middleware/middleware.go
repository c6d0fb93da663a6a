// Package middleware provides the server-level middleware that wraps every
// route mounted by the registrar: panic recovery, access logging, trace IDs,
// client IP extraction and rate limiting.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"go.uber.org/zap"
)

// Use the Middleware type from the common package
type Middleware = common.Middleware

// Chain chains multiple middlewares together, skipping nil ones
func Chain(middlewares ...Middleware) Middleware {
	chain := common.NewMiddlewareChain(middlewares...)
	return func(next http.Handler) http.Handler {
		return chain.Then(next)
	}
}

// Recovery is a middleware that recovers from panics.
// The panic is logged and the request fails with 500 through the terminal
// error handler.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					fields := []zap.Field{
						zap.Any("panic", rec),
						zap.String("stack", string(debug.Stack())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					}
					if traceID := GetTraceID(r); traceID != "" {
						fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
					}
					logger.Error("Panic recovered", fields...)

					httperror.Fail(w, r, httperror.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Logging is a middleware that logs requests
func Logging(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer that captures the status code
			rw := NewStatusRecorder(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Duration("duration", duration),
			}
			if traceID := GetTraceID(r); traceID != "" {
				fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
			}

			// Use appropriate log level based on status code and duration
			switch {
			case rw.Status() >= 500:
				logger.Error("Server error", append(fields, zap.String("remote_addr", r.RemoteAddr))...)
			case rw.Status() >= 400:
				logger.Warn("Client error", fields...)
			case duration > 1*time.Second:
				logger.Warn("Slow request", fields...)
			default:
				// Normal requests at Debug level to avoid log spam
				logger.Debug("Request", fields...)
			}
		})
	}
}

// StatusRecorder is a wrapper around http.ResponseWriter that captures the
// status code and the number of bytes written
type StatusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

// NewStatusRecorder wraps w. The status defaults to 200.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}
	return &StatusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

// Status returns the captured status code
func (rw *StatusRecorder) Status() int {
	return rw.statusCode
}

// BytesWritten returns the number of body bytes written
func (rw *StatusRecorder) BytesWritten() int64 {
	return rw.bytesWritten
}

// WriteHeader captures the status code and calls the underlying ResponseWriter.WriteHeader
func (rw *StatusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write counts the bytes written and calls the underlying ResponseWriter.Write
func (rw *StatusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush calls the underlying ResponseWriter.Flush if it implements http.Flusher
func (rw *StatusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
