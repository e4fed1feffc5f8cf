package service

import (
	"errors"
	"fmt"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrDiaryNotFound indicates that the diary does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDiaryNotFound = errors.New("diary not found")

	// ErrInvalidDependency is returned by constructors given a nil collaborator.
	ErrInvalidDependency = errors.New("invalid service dependency")
)

// DiaryServiceError wraps errors from the diary service with context.
type DiaryServiceError struct {
	// Operation is the operation that failed (e.g., "create_diary", "reanalyze_diary")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DiaryServiceError.
func (e *DiaryServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("diary service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("diary service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DiaryServiceError) Unwrap() error {
	return e.Err
}

// NewDiaryServiceError creates a new DiaryServiceError.
// It returns known sentinel errors directly without wrapping.
func NewDiaryServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDiaryNotFound) || errors.Is(err, store.ErrDiaryNotFound) {
		return ErrDiaryNotFound
	}

	return &DiaryServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
