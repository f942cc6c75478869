// Package errors provides the error types of the Ads Assistant client.
//
// Every failed turn surfaces to the user as the same class, "assistant
// unreachable". The Kind, status code, endpoint and response body are kept
// for logs and verbose diagnostics only.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrUnreachable     = errors.New("assistant unreachable")
	ErrInvalidResponse = errors.New("invalid response format")
)

// MaxBodySnippet bounds how much of an error response body is retained
const MaxBodySnippet = 4096

// Kind classifies why the assistant could not be reached
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindStatus
	KindParse
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// UnreachableError is returned for any failed call to the assistant backend:
// transport failures, non-2xx statuses and malformed bodies alike.
type UnreachableError struct {
	Kind       Kind
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
	Cause      error
}

func (e *UnreachableError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("assistant unreachable [%d] at %s: %s", e.StatusCode, e.Endpoint, msg)
	}
	if msg == "" {
		return fmt.Sprintf("assistant unreachable at %s", e.Endpoint)
	}
	return fmt.Sprintf("assistant unreachable at %s: %s", e.Endpoint, msg)
}

// Unwrap returns the underlying transport or decoding error
func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *UnreachableError) Is(target error) bool {
	if target == ErrUnreachable {
		return true
	}
	if target == ErrInvalidResponse {
		return e.Kind == KindParse
	}
	_, ok := target.(*UnreachableError)
	return ok
}

// NewNetworkError wraps a transport-level failure
func NewNetworkError(endpoint string, cause error) *UnreachableError {
	return &UnreachableError{
		Kind:     KindNetwork,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewStatusError records a response outside the 2xx range
func NewStatusError(statusCode int, endpoint, body string) *UnreachableError {
	return &UnreachableError{
		Kind:       KindStatus,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    "unexpected status",
		Body:       truncate(body),
	}
}

// NewParseError records a 2xx response whose body has the wrong shape
func NewParseError(endpoint, message, body string) *UnreachableError {
	return &UnreachableError{
		Kind:     KindParse,
		Endpoint: endpoint,
		Message:  message,
		Body:     truncate(body),
		Cause:    ErrInvalidResponse,
	}
}

func truncate(body string) string {
	if len(body) > MaxBodySnippet {
		return body[:MaxBodySnippet]
	}
	return body
}

// IsUnreachable reports whether err is an assistant-unreachable failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// GetKind extracts the failure kind, or KindUnknown
func GetKind(err error) Kind {
	var u *UnreachableError
	if errors.As(err, &u) {
		return u.Kind
	}
	return KindUnknown
}

// GetHTTPStatus extracts the HTTP status code, or 0
func GetHTTPStatus(err error) int {
	var u *UnreachableError
	if errors.As(err, &u) {
		return u.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint the failure occurred at
func GetEndpoint(err error) string {
	var u *UnreachableError
	if errors.As(err, &u) {
		return u.Endpoint
	}
	return ""
}

// GetResponseBody extracts the (truncated) response body, if any
func GetResponseBody(err error) string {
	var u *UnreachableError
	if errors.As(err, &u) {
		return u.Body
	}
	return ""
}
