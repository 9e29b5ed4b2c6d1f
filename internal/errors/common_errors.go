package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeSchema      ErrorType = "SCHEMA"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeUnsupported ErrorType = "UNSUPPORTED"
	ErrTypeTooLarge    ErrorType = "TOO_LARGE"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// HTTPStatus maps the error type onto a response status.
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeParsing, ErrTypeSchema:
		return http.StatusUnprocessableEntity
	case ErrTypeUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

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

// NewParsingError reports an input file that could not be read at all.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaError reports required columns missing from an input table.
func NewSchemaError(message string, missing []string, cause error) *AppError {
	err := NewAppError(ErrTypeSchema, message, cause)
	if len(missing) > 0 {
		err.WithContext("missing_columns", missing)
	}
	return err
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewUnsupportedError reports an upload in a format the loader cannot read.
func NewUnsupportedError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUnsupported, message, cause)
}

// NewTooLargeError reports an upload over the configured size limit.
func NewTooLargeError(limit int64) *AppError {
	return NewAppError(ErrTypeTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit), nil).
		WithContext("max_bytes", limit)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
