package service

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkFailure reports a request that never produced an HTTP response
// (dial error, reset connection, canceled transport).
type NetworkFailure struct {
	Op  string
	Err error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkFailure) Unwrap() error { return e.Err }

// HTTPFailure reports a response with a non-2xx status.
type HTTPFailure struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPFailure) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Class returns the status class, e.g. "4xx" or "5xx".
func (e *HTTPFailure) Class() string {
	return fmt.Sprintf("%dxx", e.StatusCode/100)
}

// IsFailure reports whether err is a NetworkFailure or an HTTPFailure.
func IsFailure(err error) bool {
	var nf *NetworkFailure
	var hf *HTTPFailure
	return errors.As(err, &nf) || errors.As(err, &hf)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an HTTPFailure.
func StatusOf(err error) int {
	var hf *HTTPFailure
	if errors.As(err, &hf) {
		return hf.StatusCode
	}
	return 0
}
