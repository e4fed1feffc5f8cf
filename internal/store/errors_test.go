package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrDiaryNotFound", err: ErrDiaryNotFound, expected: true},
		{
			name:     "wrapped ErrDiaryNotFound",
			err:      fmt.Errorf("failed to load diary: %w", ErrDiaryNotFound),
			expected: true,
		},
		{
			name:     "StoreError wrapping ErrDiaryNotFound",
			err:      NewStoreError("diary", "get", "lookup failed", ErrDiaryNotFound),
			expected: true,
		},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{
			name:     "wrapped ErrDuplicate",
			err:      fmt.Errorf("failed to create diary: %w", ErrDuplicate),
			expected: true,
		},
		{name: "ErrNotFound", err: ErrNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      *StoreError
		expected string
	}{
		{
			name:     "with wrapped error",
			err:      NewStoreError("diary", "apply_outcome", "write failed", cause),
			expected: "apply_outcome operation on diary failed: write failed: connection reset",
		},
		{
			name:     "without wrapped error",
			err:      NewStoreError("diary", "create", "invalid title", nil),
			expected: "create operation on diary failed: invalid title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}

	wrapped := NewStoreError("diary", "update", "failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Errorf("errors.Is(StoreError, cause) = false, want true")
	}
	var se *StoreError
	if !errors.As(fmt.Errorf("outer: %w", wrapped), &se) || se.Operation != "update" {
		t.Errorf("errors.As did not recover the StoreError")
	}
}
