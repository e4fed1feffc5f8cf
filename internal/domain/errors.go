package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDateRange is returned when a statistics range ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// IsValidationError reports whether err is one of the diary or analysis
// validation errors, i.e. a problem with caller-supplied data.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrInvalidID,
		ErrInvalidDateRange,
		ErrEmptyDiaryID,
		ErrEmptyDiaryUserID,
		ErrEmptyDiaryTitle,
		ErrDiaryTitleTooLong,
		ErrEmptyDiaryContent,
		ErrInvalidDiaryScore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
