// Package common provides common utilities and interfaces for the SRegistrar framework.
package common

import (
	"net/http"
)

// MiddlewareChain represents an ordered chain of middleware.
// A chain never holds nil entries: every constructor and mutator drops them,
// so a stage that produced no middleware contributes nothing.
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain, skipping nil middlewares
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return compact(nil, middlewares)
}

// Append adds middleware to the end of the chain
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	return compact(c, middlewares)
}

// Prepend adds middleware to the beginning of the chain
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	result := compact(make(MiddlewareChain, 0, len(middlewares)+len(c)), middlewares)
	return append(result, c...)
}

// Then applies the middleware chain to a handler.
// The first middleware in the chain is the outermost one.
func (c MiddlewareChain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

// ThenFunc applies the middleware chain to a handler function
func (c MiddlewareChain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}

func compact(dst MiddlewareChain, middlewares []Middleware) MiddlewareChain {
	for _, m := range middlewares {
		if m != nil {
			dst = append(dst, m)
		}
	}
	return dst
}
