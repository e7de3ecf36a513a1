package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired reports that the server invalidated the held credential,
// either through the envelope business code or an HTTP 401 without an
// envelope. By the time a caller sees this error the session has already been
// torn down and navigation forced to the login route; the operation must not
// be retried.
var ErrSessionExpired = errors.New("session expired")

// TransportError reports that no usable reply was obtained from the server:
// connection failure, timeout, or a malformed response body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network connection failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusKind classifies a non-2xx HTTP status that arrived without a usable
// envelope. Each kind carries a distinct user-facing message.
type StatusKind int

const (
	StatusUnauthorized StatusKind = iota
	StatusForbidden
	StatusNotFound
	StatusServerError
	StatusOther
)

// KindForStatus maps an HTTP status code onto its classification.
func KindForStatus(status int) StatusKind {
	switch {
	case status == http.StatusUnauthorized:
		return StatusUnauthorized
	case status == http.StatusForbidden:
		return StatusForbidden
	case status == http.StatusNotFound:
		return StatusNotFound
	case status >= http.StatusInternalServerError:
		return StatusServerError
	default:
		return StatusOther
	}
}

// UserMessage returns the transient notification text for the kind.
func (k StatusKind) UserMessage() string {
	switch k {
	case StatusUnauthorized:
		return "Unauthorized, please login"
	case StatusForbidden:
		return "Permission denied"
	case StatusNotFound:
		return "Resource not found"
	case StatusServerError:
		return "Server error"
	default:
		return "Network error"
	}
}

// HTTPStatusError reports a non-2xx HTTP status on a response that carried no
// usable envelope. The session is untouched except for StatusUnauthorized,
// which additionally triggers session-expiry handling.
type HTTPStatusError struct {
	StatusCode int
	Kind       StatusKind
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Kind.UserMessage(), e.StatusCode)
}

// BusinessError reports an envelope with a non-zero business code other than
// the session-expiry sentinel. The session is untouched.
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return "Operation failed"
	}
	return e.Message
}
