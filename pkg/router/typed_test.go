package router

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/codec"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
)

type createItemReq struct {
	Name string `json:"name"`
}

type createItemResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestTypedRoute tests a typed handler mounted as a route
func TestTypedRoute(t *testing.T) {
	r, _ := newTestRouter(t, Config{Auth: auth.Off()})

	handler := Typed(codec.NewJSONCodec[createItemReq, createItemResp](), func(req *http.Request, data createItemReq) (createItemResp, error) {
		if data.Name == "" {
			return createItemResp{}, httperror.New(http.StatusUnprocessableEntity, "name is empty")
		}
		return createItemResp{ID: "1", Name: data.Name}, nil
	})
	if err := r.Plugin(PluginOptions{}).Route(Route{Method: "POST", Path: "/items", Handler: handler}); err != nil {
		t.Fatalf("Failed to register route: %v", err)
	}

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/items", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := send(`{"name":"widget"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if body := rr.Body.String(); body != `{"id":"1","name":"widget"}` {
		t.Errorf("Expected body %q, got %q", `{"id":"1","name":"widget"}`, body)
	}

	// Handler errors keep their status
	if rr := send(`{}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}

	// A body that parses as JSON but not as the request type is a 400
	if rr := send(`{"name":5}`); rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

// failingCodec fails to decode
type failingCodec struct{}

func (failingCodec) Decode(*http.Request) (string, error) { return "", errors.New("broken") }
func (failingCodec) Encode(http.ResponseWriter, int, string) error { return nil }

// TestTypedDecodeError tests that decode errors become 400
func TestTypedDecodeError(t *testing.T) {
	called := false
	handler := Typed[string, string](failingCodec{}, func(*http.Request, string) (string, error) {
		called = true
		return "", nil
	})

	err := handler(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil))
	if httperror.As(err).StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %v", http.StatusBadRequest, err)
	}
	if called {
		t.Error("Expected handler not to be called")
	}
}
