// Package errors provides structured error types for Mosaic.
//
// Errors carry a stable code so callers can branch on the category of a
// failure without matching message text, and a retry flag so infrastructure
// code knows whether an operation is worth repeating.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error identifier for categorization.
type ErrorCode string

const (
	// Form store errors
	CodeFormScopeNotFound ErrorCode = "FORM_SCOPE_NOT_FOUND"
	CodeFormScopeExists   ErrorCode = "FORM_SCOPE_EXISTS"
	CodeFieldKindUnknown  ErrorCode = "FIELD_KIND_UNKNOWN"
	CodeFieldValueInvalid ErrorCode = "FIELD_VALUE_INVALID"
	CodeFieldTypeMismatch ErrorCode = "FIELD_TYPE_MISMATCH"

	// Backend errors
	CodeCredentialScope      ErrorCode = "CREDENTIAL_SCOPE_VIOLATION"
	CodeBackendConfigInvalid ErrorCode = "BACKEND_CONFIG_INVALID"
	CodeBackendRequestFailed ErrorCode = "BACKEND_REQUEST_FAILED"

	// Routine errors
	CodeRoutineInvalid    ErrorCode = "ROUTINE_INVALID"
	CodeTemplateNotFound  ErrorCode = "TEMPLATE_NOT_FOUND"
	CodeExerciseNotFound  ErrorCode = "EXERCISE_NOT_FOUND"
	CodeImportSourceError ErrorCode = "IMPORT_SOURCE_ERROR"

	// Infrastructure errors
	CodeStorageError ErrorCode = "STORAGE_ERROR"
	CodePubSubError  ErrorCode = "PUBSUB_ERROR"
	CodeSecretError  ErrorCode = "SECRET_ERROR"

	// General errors
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// MosaicError is the base error type for all Mosaic errors.
type MosaicError struct {
	Code      ErrorCode         // Unique error code for categorization
	Message   string            // Human-readable error message
	Cause     error             // Underlying error (if any)
	Retryable bool              // Whether the operation can be retried
	Metadata  map[string]string // Additional context
}

// Error implements the error interface.
func (e *MosaicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *MosaicError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code, so errors derived from a
// sentinel via WithCause or WithMessage still match it.
func (e *MosaicError) Is(target error) bool {
	t, ok := target.(*MosaicError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *MosaicError) WithCause(cause error) *MosaicError {
	return &MosaicError{
		Code:      e.Code,
		Message:   e.Message,
		Cause:     cause,
		Retryable: e.Retryable,
		Metadata:  e.Metadata,
	}
}

// WithMessage adds a custom message.
func (e *MosaicError) WithMessage(msg string) *MosaicError {
	return &MosaicError{
		Code:      e.Code,
		Message:   msg,
		Cause:     e.Cause,
		Retryable: e.Retryable,
		Metadata:  e.Metadata,
	}
}

// WithMetadata adds contextual metadata.
func (e *MosaicError) WithMetadata(key, value string) *MosaicError {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	return &MosaicError{
		Code:      e.Code,
		Message:   e.Message,
		Cause:     e.Cause,
		Retryable: e.Retryable,
		Metadata:  meta,
	}
}

// Pre-defined sentinel errors for common cases.
// Use these with errors.Is() or wrap them with .WithCause().
var (
	ErrFormScopeNotFound = &MosaicError{Code: CodeFormScopeNotFound, Message: "form scope not found"}
	ErrFormScopeExists   = &MosaicError{Code: CodeFormScopeExists, Message: "form scope already open"}
	ErrFieldKindUnknown  = &MosaicError{Code: CodeFieldKindUnknown, Message: "unknown field kind"}
	ErrFieldValueInvalid = &MosaicError{Code: CodeFieldValueInvalid, Message: "invalid field value"}
	ErrFieldTypeMismatch = &MosaicError{Code: CodeFieldTypeMismatch, Message: "field type mismatch"}

	ErrCredentialScope      = &MosaicError{Code: CodeCredentialScope, Message: "credential not allowed in this execution context"}
	ErrBackendConfigInvalid = &MosaicError{Code: CodeBackendConfigInvalid, Message: "invalid backend configuration"}
	ErrBackendRequestFailed = &MosaicError{Code: CodeBackendRequestFailed, Message: "backend request failed", Retryable: true}

	ErrRoutineInvalid    = &MosaicError{Code: CodeRoutineInvalid, Message: "invalid routine"}
	ErrTemplateNotFound  = &MosaicError{Code: CodeTemplateNotFound, Message: "template not found"}
	ErrExerciseNotFound  = &MosaicError{Code: CodeExerciseNotFound, Message: "exercise not found"}
	ErrImportSourceError = &MosaicError{Code: CodeImportSourceError, Message: "import source error"}

	ErrStorageError = &MosaicError{Code: CodeStorageError, Message: "storage error", Retryable: true}
	ErrPubSubError  = &MosaicError{Code: CodePubSubError, Message: "pubsub error", Retryable: true}
	ErrSecretError  = &MosaicError{Code: CodeSecretError, Message: "secret access error", Retryable: true}

	ErrValidation = &MosaicError{Code: CodeValidationError, Message: "validation error"}
	ErrInternal   = &MosaicError{Code: CodeInternalError, Message: "internal error"}
)

// New creates a new MosaicError with the given code and message.
func New(code ErrorCode, message string) *MosaicError {
	return &MosaicError{
		Code:    code,
		Message: message,
	}
}

// NewRetryable creates a new retryable MosaicError.
func NewRetryable(code ErrorCode, message string) *MosaicError {
	return &MosaicError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// Wrap wraps an error with a MosaicError.
func Wrap(cause error, code ErrorCode, message string) *MosaicError {
	return &MosaicError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRetryable wraps an error with a retryable MosaicError.
func WrapRetryable(cause error, code ErrorCode, message string) *MosaicError {
	return &MosaicError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: true,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var mErr *MosaicError
	if stderrors.As(err, &mErr) {
		return mErr.Retryable
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var mErr *MosaicError
	if stderrors.As(err, &mErr) {
		return mErr.Code
	}
	return CodeInternalError
}
