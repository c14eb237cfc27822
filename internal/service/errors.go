package service

import (
	"errors"
	"fmt"

	"docbase/internal/storage"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a request collides with existing state,
	// like a duplicate collection name.
	ErrConflict = errors.New("conflict")
	// ErrConfiguration is returned when an operation cannot proceed because
	// of missing or invalid embedding configuration.
	ErrConfiguration = errors.New("configuration error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// StatusNotRetryableError reports a retry request against a file whose
// status is not in the retryable set.
type StatusNotRetryableError struct {
	FileID    string
	Status    storage.FileStatus
	Retryable []storage.FileStatus
}

func (e *StatusNotRetryableError) Error() string {
	return fmt.Sprintf("file %s has status %s; retry is only allowed from %v", e.FileID, e.Status, e.Retryable)
}

func (e *StatusNotRetryableError) Unwrap() error {
	return ErrInvalidInput
}

// BatchItemResult is the per-item outcome of a bulk operation.
type BatchItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
