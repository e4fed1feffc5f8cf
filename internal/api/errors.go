package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/api/shared"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/service"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrDiaryNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Pipeline refusals
	case errors.Is(err, task.ErrAlreadyInFlight):
		return http.StatusConflict
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrDiaryNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Diary not found"

	case errors.Is(err, task.ErrAlreadyInFlight):
		return "Analysis already in progress"

	case errors.Is(err, task.ErrQueueFull):
		return "Analysis queue is full, try again later"

	case errors.Is(err, task.ErrQueueClosed):
		return "Analysis is unavailable"

	case errors.Is(err, store.ErrDuplicate):
		return "Diary already exists"

	case errors.Is(err, domain.ErrInvalidDateRange):
		return "Invalid date range"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrEmptyDiaryTitle),
		errors.Is(err, domain.ErrDiaryTitleTooLong),
		errors.Is(err, domain.ErrEmptyDiaryContent),
		errors.Is(err, domain.ErrEmptyDiaryUserID):
		// Domain validation messages name the field and carry no data.
		return capitalize(unwrapMost(err).Error())

	case errors.Is(err, store.ErrInvalidEntity),
		domain.IsValidationError(err):
		return "Invalid diary data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. defaultMsg
// replaces the generic message for errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateDiaryRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid", "uuid4":
		return "invalid UUID format"
	case "datetime":
		return "invalid date format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

func unwrapMost(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
