package auth

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
)

var (
	ErrMethodExists  = errors.New("auth method already exists")
	ErrUnknownMethod = errors.New("unknown auth method")
	ErrInvalidMethod = errors.New("invalid auth method")
)

// Method is a named authentication method.
// Authenticate runs in front of the route's validators and handler; it either
// passes the request on or fails it.
type Method struct {
	Name         string
	Authenticate common.Middleware
}

// Registry maps method names to their authenticate middleware.
// Names are write-once.
//
// The registry is not synchronized: it is written while plugins register,
// before the server accepts traffic, and only read afterwards.
type Registry struct {
	methods map[string]common.Middleware
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]common.Middleware)}
}

// Insert adds name if it is not registered yet.
// It returns false, leaving the registry unchanged, when name already exists.
func (reg *Registry) Insert(name string, authenticate common.Middleware) bool {
	if _, exists := reg.methods[name]; exists {
		return false
	}
	reg.methods[name] = authenticate
	return true
}

// Lookup returns the authenticate middleware registered under name.
func (reg *Registry) Lookup(name string) (common.Middleware, bool) {
	m, ok := reg.methods[name]
	return m, ok
}

// Names returns the registered method names in sorted order.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.methods))
	for name := range reg.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered methods.
func (reg *Registry) Len() int {
	return len(reg.methods)
}

// Register inserts m into the registry.
// A duplicate name, an empty name or a nil Authenticate is a configuration
// error reported as httperror.BadImplementation.
func (reg *Registry) Register(m Method) error {
	if m.Name == "" || m.Authenticate == nil {
		return httperror.BadImplementation(fmt.Errorf("%w: name and authenticate function are required", ErrInvalidMethod))
	}
	if !reg.Insert(m.Name, m.Authenticate) {
		return httperror.BadImplementation(fmt.Errorf("%w: %q", ErrMethodExists, m.Name))
	}
	return nil
}

// Resolve returns the authenticate middleware for a resolved setting.
// Off yields a nil middleware: the route gets no auth stage at all.
// A name missing from the registry is a configuration error.
func Resolve(reg *Registry, s Setting) (common.Middleware, error) {
	if s.IsOff() {
		return nil, nil
	}

	if m, ok := reg.Lookup(s.Method()); ok {
		return m, nil
	}
	return nil, httperror.BadImplementation(fmt.Errorf("%w: %q", ErrUnknownMethod, s.Method()))
}
