// Package bodyparser provides the JSON body-parsing middleware that runs first
// on every registered route.
package bodyparser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"github.com/bytedance/sonic"
)

// DefaultLimit is the default maximum request body size in bytes (100 KiB).
const DefaultLimit int64 = 100 << 10

// ErrNotObjectOrArray is wrapped by the 400 error returned for JSON bodies
// whose top-level value is not an object or an array.
var ErrNotObjectOrArray = errors.New("JSON body must be an object or an array")

type bodyKey struct{}

type parsedBody struct {
	value any
	raw   []byte
}

// Option configures the JSON body parser
type Option func(*config)

type config struct {
	limit int64
}

// WithLimit sets the maximum body size in bytes. Values <= 0 keep the default.
func WithLimit(limit int64) Option {
	return func(c *config) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// JSON returns a middleware that parses JSON request bodies.
// Requests whose Content-Type is not JSON, and JSON requests with an empty
// body, get an empty object. The parsed value is available with Body and the
// raw bytes with RawBody; r.Body is replaced so handlers can read it again.
// Parsing is strict: the top-level value must be an object or an array.
// Malformed or non-strict JSON fails the request with 400 and oversized bodies
// with 413.
func JSON(opts ...Option) common.Middleware {
	cfg := &config{limit: DefaultLimit}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isJSON(r.Header.Get("Content-Type")) || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, withBody(r, parsedBody{value: map[string]any{}}))
				return
			}

			// Read the request body
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.limit))
			_ = r.Body.Close()
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					httperror.Fail(w, r, httperror.PayloadTooLarge(err))
					return
				}
				httperror.Fail(w, r, httperror.Wrap(http.StatusBadRequest, err, "Failed to read request body"))
				return
			}

			parsed := parsedBody{raw: raw, value: map[string]any{}}
			if len(bytes.TrimSpace(raw)) > 0 {
				var value any
				if err := sonic.ConfigStd.Unmarshal(raw, &value); err != nil {
					httperror.Fail(w, r, httperror.Wrap(http.StatusBadRequest, err, "Malformed JSON body"))
					return
				}
				switch value.(type) {
				case map[string]any, []any:
				default:
					httperror.Fail(w, r, httperror.Wrap(http.StatusBadRequest, ErrNotObjectOrArray, "Malformed JSON body"))
					return
				}
				parsed.value = value
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, withBody(r, parsed))
		})
	}
}

// Body returns the parsed request body.
// It returns an empty object when the body parser did not run or found no JSON.
func Body(r *http.Request) any {
	if parsed, ok := r.Context().Value(bodyKey{}).(parsedBody); ok && parsed.value != nil {
		return parsed.value
	}
	return map[string]any{}
}

// RawBody returns the raw JSON bytes read by the body parser, or nil.
func RawBody(r *http.Request) []byte {
	if parsed, ok := r.Context().Value(bodyKey{}).(parsedBody); ok {
		return parsed.raw
	}
	return nil
}

// Decode unmarshals the parsed request body into a value of type T.
func Decode[T any](r *http.Request) (T, error) {
	var data T

	raw := RawBody(r)
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}

	err := sonic.ConfigStd.Unmarshal(raw, &data)
	return data, err
}

func withBody(r *http.Request, parsed parsedBody) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, parsed))
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
