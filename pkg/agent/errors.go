package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a backend failure for retry and reporting decisions
type ErrorKind int

const (
	// KindTransient covers network and server errors worth retrying
	KindTransient ErrorKind = iota
	// KindRateLimited is transient but tracked separately in metrics
	KindRateLimited
	// KindTerminal covers auth and request errors that retrying cannot fix
	KindTerminal
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// BackendError wraps a provider failure with its classification
type BackendError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s error: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed
func (e *BackendError) Retryable() bool {
	return e.Kind != KindTerminal
}

// Classify wraps a raw provider error with its kind. Provider SDKs do not
// share an error taxonomy, so classification matches on status codes and
// well-known substrings the same way the transports report them.
func Classify(err error) *BackendError {
	if err == nil {
		return nil
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr
	}

	// Cancellation is never retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &BackendError{Kind: KindTerminal, Err: err}
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "overloaded") {
		return &BackendError{Kind: KindRateLimited, Err: err}
	}

	for _, marker := range []string{"500", "502", "503", "504", "econnreset", "etimedout", "connection refused", "connection reset", "timeout", "temporarily unavailable"} {
		if strings.Contains(msg, marker) {
			return &BackendError{Kind: KindTransient, Err: err}
		}
	}

	return &BackendError{Kind: KindTerminal, Err: err}
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable()
}

// IsRateLimited checks if an error is a rate-limit response
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Kind == KindRateLimited
}
