// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ctgov

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies a registry API failure. Timeout, Unavailable,
// RateLimited, and ServerError are transient and retried by the
// transport; Validation, NotFound, and ClientError surface immediately.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindUnavailable ErrorKind = "unavailable"
	KindRateLimited ErrorKind = "rate_limited"
	KindServerError ErrorKind = "server_error"
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindClientError ErrorKind = "client_error"
)

// APIError is a classified registry API failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("registry API %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registry API %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether the failure class is transient.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindUnavailable, KindRateLimited, KindServerError:
		return true
	}
	return false
}

// transportError classifies a request that never produced a response.
// Deadline expirations map to Timeout; DNS failures, refused
// connections, and other dial errors map to Unavailable.
func transportError(err error) *APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: err.Error(), Err: err}
	}
	return &APIError{Kind: KindUnavailable, Message: err.Error(), Err: err}
}

// statusError converts a non-2xx HTTP status into a classified error.
// The body excerpt gives validation failures a usable message.
func statusError(status int, path, body string) *APIError {
	const maxExcerpt = 200
	if len(body) > maxExcerpt {
		body = body[:maxExcerpt]
	}
	switch {
	case status == http.StatusBadRequest:
		return &APIError{Kind: KindValidation, StatusCode: status, Message: "invalid query: " + body}
	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: status, Message: "resource not found: " + path}
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, StatusCode: status, Message: "rate limit exceeded"}
	case status >= 500:
		return &APIError{Kind: KindServerError, StatusCode: status, Message: http.StatusText(status)}
	default:
		return &APIError{Kind: KindClientError, StatusCode: status, Message: http.StatusText(status)}
	}
}

// IsNotFound reports whether err is a registry not-found failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}
