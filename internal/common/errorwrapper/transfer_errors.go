package errorwrapper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// NetworkError is a request that never produced an HTTP response.
// URL must already be redacted.
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("%s (%s)", e.Reason, e.URL)
	}
	return fmt.Sprintf("%s (%s): %v", e.Reason, e.URL, e.Wrapped)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// Is makes every NetworkError match ErrNetworkFailure.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}

func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{URL: url, Reason: reason, Wrapped: wrapped}
}

// HTTPError is an unexpected response status. Message holds a short excerpt
// of the response body.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.URL != "" {
		msg += " from " + e.URL
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Retryable reports whether the server asked to be tried again later.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}

// DownloadWriteError means the remote body was fine but could not be stored
// (disk full, permission denied, rename failure).
type DownloadWriteError struct {
	Path    string
	Wrapped error
}

func (e *DownloadWriteError) Error() string {
	return fmt.Sprintf("cannot store download at %s: %v", e.Path, e.Wrapped)
}

func (e *DownloadWriteError) Unwrap() error {
	return e.Wrapped
}

func NewDownloadWriteError(path string, wrapped error) *DownloadWriteError {
	return &DownloadWriteError{Path: path, Wrapped: wrapped}
}

// IsTransient reports whether err should clear up without intervention:
// timeouts, refused or reset connections, any NetworkError, 429 and 5xx.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, ErrNetworkFailure)
}
