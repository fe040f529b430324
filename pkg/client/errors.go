package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrFetch is matched by every failure to obtain a response body
	// (network, timeout, cancellation).
	ErrFetch = errors.New("fetch failed")

	// ErrDecode is matched when a response body is not valid JSON for the target.
	ErrDecode = errors.New("decode failed")
)

// RequestError describes a failed SWAPI request.
type RequestError struct {
	// Class is the failure classification.
	Class ErrorClass

	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("swapi %s error (status %d) for %s: %v",
			e.Class, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("swapi %s error for %s: %v", e.Class, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is maps the error class onto ErrFetch or ErrDecode.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Class.isFetch()
	case ErrDecode:
		return e.Class == ErrorClassDecode
	default:
		return false
	}
}

// ClassOf returns the ErrorClass carried by err, or "" if err is not a RequestError.
func ClassOf(err error) ErrorClass {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Class
	}
	return ""
}

func (c ErrorClass) isFetch() bool {
	switch c {
	case ErrorClassNetwork, ErrorClassTimeout, ErrorClassCancelled:
		return true
	default:
		return false
	}
}
