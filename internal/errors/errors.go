// Package errors provides standardized error handling for filedeck.
// It defines the error kinds surfaced at the file-system boundary and by the
// browser core, plus helpers for consistent creation, wrapping and checks.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	IOFailure
	NameInvalid
	AlreadyExists
	NotListed
	// Operation error kinds
	InvalidOperation
	// Config error kinds
	InvalidConfig
	ConfigNotFound
)

// String returns the short name of the kind, used in logs and API responses.
func (k ErrorKind) String() string {
	switch k {
	case IOFailure:
		return "io_error"
	case NameInvalid:
		return "name_invalid"
	case AlreadyExists:
		return "already_exists"
	case NotListed:
		return "not_listed"
	case InvalidOperation:
		return "invalid_operation"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotFound:
		return "config_not_found"
	default:
		return "unknown"
	}
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// IOError wraps a failure at the file-system boundary.
func IOError(op, path string, err error) *FileError {
	return NewFileError(op+" failed", path, IOFailure, err)
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// OperationError reports an operation requested in a state that does not allow it.
type OperationError struct {
	ApplicationError
	operation string
}

// NewOperationError creates a new invalid operation error
func NewOperationError(msg string, operation string, err error) *OperationError {
	return &OperationError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: InvalidOperation,
		},
		operation: operation,
	}
}

// Error returns the operation error message
func (e *OperationError) Error() string {
	if e.operation != "" {
		return fmt.Sprintf("%s: operation=%s", e.ApplicationError.Error(), e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the operation that was rejected
func (e *OperationError) Operation() string {
	return e.operation
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind()
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind()
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind()
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return Unknown
}

// IsIOFailure checks if the error is a file-system boundary failure
func IsIOFailure(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == IOFailure
	}
	return false
}

// IsNameInvalid checks if the error is an invalid name error
func IsNameInvalid(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == NameInvalid
	}
	return false
}

// IsAlreadyExists checks if the error is a create collision
func IsAlreadyExists(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == AlreadyExists
	}
	return false
}

// IsNotListed checks if the error refers to an entry missing from the listing
func IsNotListed(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == NotListed
	}
	return false
}

// IsInvalidOperation checks if the error is an invalid operation error
func IsInvalidOperation(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
