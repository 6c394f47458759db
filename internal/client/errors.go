// Package client is the transport layer for the page-components backend:
// five REST operations sharing one {success, message, data} envelope.
package client

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError is an application failure: the backend answered with a parseable
// envelope and success=false. It is a normal, non-exceptional outcome and is
// never retried.
type APIError struct {
	Operation string // Operation that failed (e.g., "update", "reorder")
	Message   string // Backend-provided message
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("page-components %s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("page-components %s failed", e.Operation)
}

// HTTPError is a non-2xx response with no parseable envelope.
type HTTPError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("page-components %s: HTTP %d %s: %s", e.Operation, e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("page-components %s: HTTP %d %s", e.Operation, e.StatusCode, e.Status)
}

// IsRetryable reports whether the response indicates a transient condition.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// TransportError is a network-level failure: the request never produced a
// usable response.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("page-components %s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsApplicationFailure reports whether err carries a backend success=false
// envelope, i.e. the failure path that must never be retried.
func IsApplicationFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// isRetryableError classifies transport-level errors for the list retry path.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}

	if IsApplicationFailure(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"deadline exceeded",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// UserFriendlyMessage maps a client error onto the message shown in the
// editor's notification panel.
func UserFriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 404:
			return "Section not found. It may have been deleted elsewhere."
		case httpErr.StatusCode == 429:
			return "Too many requests. Please slow down."
		case httpErr.StatusCode >= 500:
			return "Server error. Please try again later."
		default:
			return fmt.Sprintf("Request failed (HTTP %d).", httpErr.StatusCode)
		}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "Could not reach the server. Please check your connection."
	}

	return "Something went wrong. Please try again."
}
