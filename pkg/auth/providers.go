package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"go.uber.org/zap"
)

var (
	errNoCredentials      = errors.New("no credentials")
	errInvalidCredentials = errors.New("invalid credentials")
)

// Provider defines an interface for authentication providers.
// Different authentication mechanisms implement it to be registered with
// ProviderMethod.
type Provider interface {
	// Authenticate examines the request for credentials and returns an error
	// when they are missing or invalid.
	Authenticate(r *http.Request) error
}

// BasicProvider provides HTTP Basic Authentication.
// It validates username and password credentials against a predefined map.
type BasicProvider struct {
	Credentials map[string]string // username -> password
}

// Authenticate authenticates a request using HTTP Basic Authentication.
func (p *BasicProvider) Authenticate(r *http.Request) error {
	username, password, ok := r.BasicAuth()
	if !ok {
		return errNoCredentials
	}

	expected, exists := p.Credentials[username]
	if !exists || subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return errInvalidCredentials
	}
	return nil
}

// BearerProvider provides Bearer Token Authentication.
// It validates tokens against a predefined set or with a custom validator.
type BearerProvider struct {
	ValidTokens map[string]bool         // token -> valid
	Validator   func(token string) bool // optional token validator
}

// Authenticate authenticates a request using Bearer Token Authentication.
// The validator, when set, takes precedence over ValidTokens.
func (p *BearerProvider) Authenticate(r *http.Request) error {
	token, ok := bearerToken(r)
	if !ok {
		return errNoCredentials
	}

	if p.Validator != nil {
		if p.Validator(token) {
			return nil
		}
		return errInvalidCredentials
	}

	if p.ValidTokens[token] {
		return nil
	}
	return errInvalidCredentials
}

// APIKeyProvider provides API Key Authentication.
// The key is read from a header, then from a query parameter.
type APIKeyProvider struct {
	ValidKeys map[string]bool // key -> valid
	Header    string          // header name (e.g., "X-API-Key")
	Query     string          // query parameter name (e.g., "api_key")
}

// Authenticate authenticates a request using API Key Authentication.
func (p *APIKeyProvider) Authenticate(r *http.Request) error {
	key := ""
	if p.Header != "" {
		key = r.Header.Get(p.Header)
	}
	if key == "" && p.Query != "" {
		key = r.URL.Query().Get(p.Query)
	}

	if key == "" {
		return errNoCredentials
	}
	if !p.ValidKeys[key] {
		return errInvalidCredentials
	}
	return nil
}

// ProviderMethod creates a method named name that authenticates with provider.
// Failed requests are logged and terminated with 401 Unauthorized through the
// route's terminal error handler.
func ProviderMethod(name string, provider Provider, logger *zap.Logger) Method {
	if provider == nil {
		return Method{Name: name}
	}
	return Func(name, provider.Authenticate, logger)
}

// Func creates a method named name from a plain authenticate function.
// A nil function yields a method that Registry.Register rejects.
func Func(name string, authenticate func(*http.Request) error, logger *zap.Logger) Method {
	if authenticate == nil {
		return Method{Name: name}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return Method{
		Name: name,
		Authenticate: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := authenticate(r); err != nil {
					logger.Warn("Authentication failed",
						zap.String("auth_method", name),
						zap.Error(err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("remote_addr", r.RemoteAddr),
					)
					httperror.Fail(w, r, httperror.Unauthorized(err))
					return
				}

				next.ServeHTTP(w, r)
			})
		},
	}
}

// BasicMethod creates a method that uses HTTP Basic Authentication.
func BasicMethod(name string, credentials map[string]string, logger *zap.Logger) Method {
	return ProviderMethod(name, &BasicProvider{Credentials: credentials}, logger)
}

// BearerMethod creates a method that uses Bearer Token Authentication with a validator function.
func BearerMethod(name string, validator func(token string) bool, logger *zap.Logger) Method {
	return ProviderMethod(name, &BearerProvider{Validator: validator}, logger)
}

// APIKeyMethod creates a method that uses API Key Authentication.
func APIKeyMethod(name string, validKeys map[string]bool, header, query string, logger *zap.Logger) Method {
	return ProviderMethod(name, &APIKeyProvider{ValidKeys: validKeys, Header: header, Query: query}, logger)
}

type userKey[T any] struct{}

// BearerUserMethod creates a method that resolves a bearer token to a user and
// adds the user to the request context. Handlers read it with User.
// A nil getUser yields a method that Registry.Register rejects.
func BearerUserMethod[T any](name string, getUser func(ctx context.Context, token string) (*T, error), logger *zap.Logger) Method {
	if getUser == nil {
		return Method{Name: name}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return Method{
		Name: name,
		Authenticate: common.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token, ok := bearerToken(r)
				var (
					user *T
					err  = errNoCredentials
				)
				if ok {
					user, err = getUser(r.Context(), token)
					if err == nil && user == nil {
						err = errInvalidCredentials
					}
				}
				if err != nil {
					logger.Warn("Authentication failed",
						zap.String("auth_method", name),
						zap.Error(err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					httperror.Fail(w, r, httperror.Unauthorized(err))
					return
				}

				ctx := context.WithValue(r.Context(), userKey[T]{}, user)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}),
	}
}

// User retrieves the user added by BearerUserMethod.
// Returns nil if no user is found in the context.
func User[T any](r *http.Request) *T {
	user, _ := r.Context().Value(userKey[T]{}).(*T)
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}
