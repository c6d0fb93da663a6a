// Package httperror provides the failure signaling primitives raised while
// registering and serving routes, and the terminal error handler that turns
// them into responses.
package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an HTTP error with a status code and message.
// Payload carries structured details for the client (validation details for
// BadRequest). Cause is the underlying error, if any, and is reachable with
// errors.Is / errors.As.
type Error struct {
	StatusCode int    // HTTP status code (e.g., 400, 401, 500)
	Message    string // Error message to be sent in the response body
	Payload    any    // Optional structured details
	cause      error
}

// Error implements the error interface.
// It returns a string representation of the HTTP error in the format "status: message".
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.StatusCode, e.Message, e.cause)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error with the given status code and message.
// An empty message is replaced by the status text.
func New(statusCode int, message string) *Error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{StatusCode: statusCode, Message: message}
}

// Wrap creates an Error with the given status code that wraps cause.
func Wrap(statusCode int, cause error, message string) *Error {
	e := New(statusCode, message)
	e.cause = cause
	return e
}

// BadRequest signals a request that failed validation.
// details are delivered verbatim as the response payload.
func BadRequest(details any) *Error {
	e := New(http.StatusBadRequest, "")
	e.Payload = details
	return e
}

// BadImplementation signals a configuration error made by the author of a
// plugin or route. It is raised at registration time and must abort setup.
func BadImplementation(cause error) *Error {
	return Wrap(http.StatusInternalServerError, cause, "Bad Implementation")
}

// Unauthorized signals a request that failed authentication.
func Unauthorized(cause error) *Error {
	return Wrap(http.StatusUnauthorized, cause, "")
}

// TooManyRequests signals a request rejected by rate limiting.
func TooManyRequests() *Error {
	return New(http.StatusTooManyRequests, "")
}

// PayloadTooLarge signals a request body over the configured limit.
func PayloadTooLarge(cause error) *Error {
	return Wrap(http.StatusRequestEntityTooLarge, cause, "")
}

// Internal signals an unexpected failure while serving a request.
func Internal(cause error) *Error {
	return Wrap(http.StatusInternalServerError, cause, "")
}

// As converts err into an *Error. Errors that are not an *Error are reported
// as internal server errors wrapping err.
func As(err error) *Error {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return Internal(err)
}

// IsBadImplementation reports whether err is a registration-time configuration error.
func IsBadImplementation(err error) bool {
	var httpErr *Error
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusInternalServerError && httpErr.Message == "Bad Implementation"
}
