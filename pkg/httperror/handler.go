package httperror

import (
	"context"
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ProblemContentType is the media type of responses written by the terminal error handler.
const ProblemContentType = "application/problem+json"

// Problem is an RFC 9457 problem document.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// Handler is a terminal error handler. It writes the response for a request
// that failed anywhere in its middleware chain or in its route handler.
type Handler func(w http.ResponseWriter, r *http.Request, err error)

type handlerKey struct{}

// NewHandler returns the default terminal error handler.
// Server errors are logged at Error level and client errors at Warn level.
// traceID may be nil.
func NewHandler(logger *zap.Logger, traceID func(*http.Request) string) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := As(err)

		id := ""
		if traceID != nil {
			id = traceID(r)
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", httpErr.StatusCode),
		}
		if id != "" {
			fields = append([]zap.Field{zap.String("trace_id", id)}, fields...)
		}

		if httpErr.StatusCode >= 500 {
			logger.Error("Request failed", fields...)
		} else {
			logger.Warn("Request rejected", fields...)
		}

		writeProblem(w, r, httpErr, id)
	}
}

// Boundary returns a middleware that installs h as the terminal error handler
// for every request passing through it. Middleware further down the chain
// reports failures with Fail.
func Boundary(h Handler) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), handlerKey{}, h)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Fail terminates the request with err, using the terminal error handler
// installed by Boundary. Without a boundary the problem document is written
// without logging.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	if h, ok := r.Context().Value(handlerKey{}).(Handler); ok && h != nil {
		h(w, r, err)
		return
	}
	writeProblem(w, r, As(err), "")
}

func writeProblem(w http.ResponseWriter, r *http.Request, e *Error, traceID string) {
	problem := Problem{
		Type:     "about:blank",
		Title:    http.StatusText(e.StatusCode),
		Status:   e.StatusCode,
		Instance: r.URL.Path,
		TraceID:  traceID,
		Errors:   e.Payload,
	}
	if e.Message != problem.Title {
		problem.Detail = e.Message
	}

	body, err := sonic.ConfigDefault.Marshal(problem)
	if err != nil {
		http.Error(w, problem.Title, e.StatusCode)
		return
	}

	w.Header().Set("Content-Type", ProblemContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(body)
}
