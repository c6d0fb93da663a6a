// Package common provides shared types and utilities used across the SRegistrar framework.
package common

import (
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
// It allows for pre-processing and post-processing of HTTP requests.
// Middleware can be chained together to create a pipeline of request processing.
type Middleware func(http.Handler) http.Handler

// Noop is a middleware that passes every request to the next handler unchanged.
func Noop(next http.Handler) http.Handler {
	return next
}
