package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigWrite ErrorCode = "CONFIG_WRITE"

	// Repository tree errors
	ErrNotARepository         ErrorCode = "NOT_A_REPOSITORY"
	ErrDetachedHead           ErrorCode = "DETACHED_HEAD"
	ErrLocalRepository        ErrorCode = "LOCAL_REPOSITORY"
	ErrReconciliationConflict ErrorCode = "RECONCILIATION_CONFLICT"
	ErrVcsProcess             ErrorCode = "VCS_PROCESS"

	// Component errors
	ErrUnresolvedComponent ErrorCode = "UNRESOLVED_COMPONENT"
	ErrManifestNotFound    ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestInvalid     ErrorCode = "MANIFEST_INVALID"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// CubeError represents a structured error with code and details
type CubeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CubeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CubeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CubeError) Is(target error) bool {
	var targetErr *CubeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CubeError with the given code and message
func New(code ErrorCode, message string) *CubeError {
	return &CubeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CubeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CubeError {
	return &CubeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CubeError
func Wrap(err error, code ErrorCode, message string) *CubeError {
	if err == nil {
		return nil
	}
	return &CubeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CubeError {
	if err == nil {
		return nil
	}
	return &CubeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CubeError) WithDetail(key string, value interface{}) *CubeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cubeErr *CubeError
	if errors.As(err, &cubeErr) {
		return cubeErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CubeError
func GetErrorCode(err error) ErrorCode {
	var cubeErr *CubeError
	if errors.As(err, &cubeErr) {
		return cubeErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CubeError
func GetErrorDetails(err error) map[string]interface{} {
	var cubeErr *CubeError
	if errors.As(err, &cubeErr) {
		return cubeErr.Details
	}
	return nil
}

// IsRecoverable reports whether err may be downgraded to a warning when the
// caller asked to ignore reconciliation failures. Only conflicts and failed
// VCS commands qualify; every other code aborts the traversal.
func IsRecoverable(err error) bool {
	switch GetErrorCode(err) {
	case ErrReconciliationConflict, ErrVcsProcess:
		return true
	default:
		return false
	}
}
