package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// StatusError is returned by provider adapters for non-success HTTP responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= http.StatusInternalServerError
}

// IsTransient reports whether err is a network failure, a per-call timeout,
// or a retryable HTTP status. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Transient()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
