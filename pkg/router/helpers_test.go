package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// problemBody is the decoded form of a problem response
type problemBody struct {
	Title   string              `json:"title"`
	Status  int                 `json:"status"`
	Detail  string              `json:"detail"`
	TraceID string              `json:"traceId"`
	Errors  []validation.Detail `json:"errors"`
}

// schemaFunc adapts a function to validation.Schema
type schemaFunc func(input any) validation.Outcome

func (f schemaFunc) Validate(input any) validation.Outcome {
	return f(input)
}

// newTestRouter creates a router with an observed logger
func newTestRouter(t *testing.T, config Config) (*Router, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	config.Logger = zap.New(core)

	r, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}
	return r, logs
}

// tokenMethod accepts requests carrying "Authorization: Bearer good"
func tokenMethod(name string) auth.Method {
	return auth.Func(name, func(r *http.Request) error {
		if r.Header.Get("Authorization") != "Bearer good" {
			return errors.New("bad token")
		}
		return nil
	}, nil)
}

// okHandler writes 200 OK
func okHandler(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
	return nil
}

// serve sends a request to the router
func serve(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decodeProblem decodes a problem response body
func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problemBody {
	t.Helper()
	var p problemBody
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("Failed to decode problem body %q: %v", rr.Body.String(), err)
	}
	return p
}
