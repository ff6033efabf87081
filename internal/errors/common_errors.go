package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeDataset    ErrorType = "DATASET"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeEmptyInput ErrorType = "EMPTY_INPUT"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	// ErrEmptyInput is wrapped by every empty-input AppError so callers
	// can distinguish "no data for range" from real failures.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidRange is wrapped by every range-validation AppError.
	ErrInvalidRange = errors.New("invalid date range")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewDatasetError creates a dataset load error (missing file, malformed
// rows, missing required columns). These are fatal and never downgraded
// to empty output.
func NewDatasetError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataset, message, cause)
}

// NewRangeError creates a validation error for a caller-supplied date
// range where start is after end.
func NewRangeError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, ErrInvalidRange)
}

// NewEmptyInputError creates an error for an aggregation invoked on zero
// rows. Surfaced as "no data for range" rather than producing zeroes that
// would misrepresent the data.
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, ErrEmptyInput)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
