package downloader

import (
	"errors"
	"fmt"
)

var (
	ErrMaxRedirectExceeded = errors.New("maximum redirect exceeded")
	ErrMaxRetryExceeded    = errors.New("max retry exceeded")
	ErrIdleTimeout         = errors.New("idle timeout: no data received")
	ErrUnsupportedScheme   = errors.New("unsupported URL scheme")

	// errAborted is the cancellation cause for attempts the driver itself
	// tears down. It never reaches callers.
	errAborted = errors.New("attempt aborted")
)

// TransportError is a network-level failure of a single attempt. The driver
// retries these; callers only see them wrapped inside ErrMaxRetryExceeded.
type TransportError struct {
	AttemptID string
	URL       string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("attempt %s for %s: %v", e.AttemptID, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a terminal response that is neither a redirect nor a
// success.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}
