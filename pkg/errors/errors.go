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
	ErrCancelled     ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Template errors
	ErrTemplateSyntax ErrorCode = "TEMPLATE_SYNTAX"

	// Field errors
	ErrFieldInvalid  ErrorCode = "FIELD_INVALID"
	ErrFieldNotFound ErrorCode = "FIELD_NOT_FOUND"
	ErrFieldType     ErrorCode = "FIELD_TYPE"

	// Plugin errors
	ErrPluginNotFound ErrorCode = "PLUGIN_NOT_FOUND"
	ErrPluginConfig   ErrorCode = "PLUGIN_CONFIG"
	ErrPluginEvent    ErrorCode = "PLUGIN_EVENT"

	// Row and external system errors
	ErrRowRejected       ErrorCode = "ROW_REJECTED"
	ErrResourceNotFound  ErrorCode = "RESOURCE_NOT_FOUND"
	ErrRegistryRecord    ErrorCode = "REGISTRY_RECORD"
	ErrExternalSystem    ErrorCode = "EXTERNAL_SYSTEM"
	ErrTaskRunning       ErrorCode = "TASK_RUNNING"
	ErrSessionStart      ErrorCode = "SESSION_START"
	ErrDestinationExists ErrorCode = "DESTINATION_EXISTS"

	// FileSystem errors
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess     ErrorCode = "FILE_ACCESS"
	ErrFileCopy       ErrorCode = "FILE_COPY"
	ErrFileWrite      ErrorCode = "FILE_WRITE"
	ErrDirCreate      ErrorCode = "DIR_CREATE"
	ErrDirNotWritable ErrorCode = "DIR_NOT_WRITABLE"
)

// dataCodes are the user-correctable codes. Everything else is a system error.
var dataCodes = map[ErrorCode]bool{
	ErrInvalidInput:      true,
	ErrFieldInvalid:      true,
	ErrRowRejected:       true,
	ErrResourceNotFound:  true,
	ErrRegistryRecord:    true,
	ErrDestinationExists: true,
}

// RenameError represents a structured error with code and details
type RenameError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RenameError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RenameError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RenameError) Is(target error) bool {
	var targetErr *RenameError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RenameError with the given code and message
func New(code ErrorCode, message string) *RenameError {
	return &RenameError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RenameError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RenameError {
	return &RenameError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RenameError
func Wrap(err error, code ErrorCode, message string) *RenameError {
	if err == nil {
		return nil
	}
	return &RenameError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RenameError {
	if err == nil {
		return nil
	}
	return &RenameError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RenameError) WithDetail(key string, value interface{}) *RenameError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RenameError) WithDetails(details map[string]interface{}) *RenameError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var renameErr *RenameError
	if errors.As(err, &renameErr) {
		return renameErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RenameError
func GetErrorCode(err error) ErrorCode {
	var renameErr *RenameError
	if errors.As(err, &renameErr) {
		return renameErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RenameError
func GetErrorDetails(err error) map[string]interface{} {
	var renameErr *RenameError
	if errors.As(err, &renameErr) {
		return renameErr.Details
	}
	return nil
}

// IsDataError reports whether err is user-correctable (bad field value, missing
// external record, existing destination). The outermost coded error decides.
func IsDataError(err error) bool {
	var renameErr *RenameError
	if errors.As(err, &renameErr) {
		return dataCodes[renameErr.Code]
	}
	return false
}

// IsSystemError reports whether err is an infrastructure failure.
func IsSystemError(err error) bool {
	return err != nil && !IsDataError(err)
}
