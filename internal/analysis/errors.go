package analysis

import (
	"errors"
	"fmt"
)

// ErrClient is the root of every failure returned by Client.Analyze.
// Callers that only care whether an analysis call failed match on it.
var ErrClient = errors.New("analysis client error")

// Specific client failures. Each one wraps ErrClient.
var (
	// ErrUnexpectedStatus is returned when the service answers with a non-2xx status.
	ErrUnexpectedStatus = fmt.Errorf("%w: unexpected status", ErrClient)

	// ErrInvalidResponse is returned when the body cannot be decoded, matches no
	// known response shape, or carries out-of-range values.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrClient)

	// ErrTransport is returned when the request could not be completed,
	// including timeouts.
	ErrTransport = fmt.Errorf("%w: transport failure", ErrClient)

	// ErrInvalidRequest is returned when the request is rejected before sending.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrClient)
)

// ErrInvalidConfig is returned by NewClient for unusable configuration.
var ErrInvalidConfig = errors.New("invalid analysis client configuration")

// StatusError carries the HTTP status of a rejected call.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatus.Error(), e.StatusCode)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus and ErrClient.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
