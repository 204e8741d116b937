package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category independently of its message.
type ErrorCode string

const (
	ErrUnknown ErrorCode = "UNKNOWN"

	// Content resolution
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrSoftFetchFailure ErrorCode = "SOFT_FETCH_FAILURE"
	ErrMalformedBlock   ErrorCode = "MALFORMED_BLOCK"

	// Personalization
	ErrPersonalizationFailure ErrorCode = "PERSONALIZATION_FAILURE"

	// Entry store transport
	ErrStoreStatus ErrorCode = "STORE_STATUS"
	ErrStoreDecode ErrorCode = "STORE_DECODE"

	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// PipelineError is a structured error with a stable code.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *PipelineError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Wrapped
}

// Is matches any PipelineError carrying the same code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// WithDetail adds a detail and returns the error for chaining.
func (e *PipelineError) WithDetail(key string, value interface{}) *PipelineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, message string) *PipelineError {
	if err == nil {
		return nil
	}
	return &PipelineError{Code: code, Message: message, Wrapped: err}
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PipelineError {
	if err == nil {
		return nil
	}
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// CodeOf returns the code of the outermost PipelineError in the chain.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrUnknown
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound
}

// Re-exports so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)
