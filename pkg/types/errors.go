// Package types defines error types
package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Predefined errors
var (
	// ErrCancelled indicates the caller abandoned the operation
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidInput indicates invalid input
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAuthenticated indicates a call that needs a session was made without one
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnexpectedResponse indicates a response body that does not match the envelope
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// StatusTooManyRequests is the status code the backend uses to signal rate limiting.
const StatusTooManyRequests = http.StatusTooManyRequests

// APIError is a failed call to the backend.
type APIError struct {
	// StatusCode is the HTTP status (or the envelope statusCode), zero when the
	// request never produced a response
	StatusCode int

	// Message is the envelope message or a short description of the failure
	Message string

	// RetryAfter is the raw Retry-After hint: seconds or an HTTP-date
	RetryAfter string

	// RequestID is the X-Request-ID sent with the failed attempt
	RequestID string

	// Cancelled marks failures caused by the caller aborting the request
	Cancelled bool

	// Body is the raw response body, if any
	Body []byte

	// Err is the underlying transport error, if any
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	switch {
	case e.Cancelled:
		return fmt.Sprintf("request cancelled: %v", e.Err)
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the backend answered 429
func (e *APIError) RateLimited() bool {
	return e.StatusCode == StatusTooManyRequests
}

// StatusCode returns the status carried by err, or 0 if it carries none
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// RetryAfterHint returns the raw Retry-After hint carried by err
func RetryAfterHint(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter != "" {
		return apiErr.RetryAfter, true
	}
	return "", false
}

// IsCancelled reports whether err represents a caller-initiated abort
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Cancelled
}
