package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusNetwork is the sentinel status for failures below the HTTP layer
// (connection refused, timeouts, malformed responses). It is never a real
// HTTP status code.
const StatusNetwork = 0

// RequestError reports a failed request with its numeric status code. The
// status is always set by the request layer itself, never inferred from
// stringified error text.
type RequestError struct {
	Op     string
	Path   string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Status == StatusNetwork {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d", e.Op, e.Path, e.Status)
}

// Unwrap exposes the underlying transport error when present.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a request failure with status 401.
// This is the only signal the error classifier acts on.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status == http.StatusUnauthorized
	}
	return false
}

// IsNotFound reports whether err is a request failure with status 404.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status == http.StatusNotFound
	}
	return false
}

// StatusOf returns the status carried by err, or StatusNetwork when err is
// not a request failure.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return StatusNetwork
}
