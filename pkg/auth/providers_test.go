package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func serveWith(m Method, req *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, called
}

func TestBasicMethod(t *testing.T) {
	m := BasicMethod("basic", map[string]string{"user": "secret"}, zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	req.SetBasicAuth("user", "secret")
	if rr, called := serveWith(m, req); !called || rr.Code != http.StatusOK {
		t.Errorf("Expected valid credentials to pass, got %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.SetBasicAuth("user", "wrong")
	if rr, called := serveWith(m, req); called || rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected invalid credentials to fail with 401, got %d", rr.Code)
	}
}

func TestBearerMethodLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := BearerMethod("token", func(token string) bool { return token == "good" }, zap.New(core))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	if rr, called := serveWith(m, req); !called || rr.Code != http.StatusOK {
		t.Errorf("Expected valid token to pass, got %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	if rr, called := serveWith(m, req); called || rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected invalid token to fail with 401, got %d", rr.Code)
	}

	if logs.FilterMessage("Authentication failed").Len() != 1 {
		t.Errorf("Expected one 'Authentication failed' log entry, got %d", logs.Len())
	}
}

func TestBearerProviderTokenSet(t *testing.T) {
	p := &BearerProvider{ValidTokens: map[string]bool{"t1": true}}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer t1")
	if err := p.Authenticate(req); err != nil {
		t.Errorf("Expected token to be valid, got %v", err)
	}

	req.Header.Set("Authorization", "Basic t1")
	if err := p.Authenticate(req); err == nil {
		t.Errorf("Expected non-bearer scheme to fail")
	}
}

func TestAPIKeyMethod(t *testing.T) {
	m := APIKeyMethod("key", map[string]bool{"k1": true}, "X-API-Key", "api_key", nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "k1")
	if _, called := serveWith(m, req); !called {
		t.Errorf("Expected header key to pass")
	}

	req = httptest.NewRequest("GET", "/?api_key=k1", nil)
	if _, called := serveWith(m, req); !called {
		t.Errorf("Expected query key to pass")
	}

	req = httptest.NewRequest("GET", "/?api_key=nope", nil)
	if rr, called := serveWith(m, req); called || rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected unknown key to fail with 401, got %d", rr.Code)
	}
}

func TestBearerUserMethod(t *testing.T) {
	type account struct{ ID string }

	m := BearerUserMethod("session", func(ctx context.Context, token string) (*account, error) {
		if token == "s1" {
			return &account{ID: "42"}, nil
		}
		return nil, errors.New("unknown session")
	}, nil)

	var got *account
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = User[account](r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer s1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "42" {
		t.Errorf("Expected user 42 in context, got %+v", got)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected missing token to fail with 401, got %d", rr.Code)
	}
}

// TestNilAuthenticatorRejected tests that methods built without an authenticator fail registration
func TestNilAuthenticatorRejected(t *testing.T) {
	methods := []Method{
		BearerUserMethod[struct{}]("session", nil, nil),
		Func("custom", nil, nil),
		ProviderMethod("provider", nil, nil),
	}

	for _, m := range methods {
		if m.Authenticate != nil {
			t.Errorf("Expected %q to have no authenticate middleware", m.Name)
		}

		reg := NewRegistry()
		err := reg.Register(m)
		if !errors.Is(err, ErrInvalidMethod) {
			t.Errorf("Expected %q to fail with ErrInvalidMethod, got %v", m.Name, err)
		}
		if reg.Len() != 0 {
			t.Errorf("Expected registry to stay empty, got %d methods", reg.Len())
		}
	}
}
