package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeFitFailed       = "FIT_FAILED"
	CodeAllFitsFailed   = "ALL_FITS_FAILED"
	CodeGoFFailed       = "GOF_FAILED"
	CodeStabilityFailed = "STABILITY_FAILED"
	CodeEmptySelection  = "EMPTY_SELECTION"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Common error constructors

// ConfigInvalid flags a rejected configuration value.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatabaseError flags a persistence failure.
func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

// InvalidInput flags a fatal input-invariant violation (mismatched lengths,
// pseudo-observations outside the open unit square). Never recovered.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// FitFailed flags one family's optimizer failure. Recovered by dropping the
// family from the condition's result set.
func FitFailed(family string, cause error) *AppError {
	return &AppError{
		Code:    CodeFitFailed,
		Message: fmt.Sprintf("fit failed for family %s", family),
		Cause:   cause,
	}
}

// AllFitsFailed flags the fatal case where no family could be fitted for a
// condition; model selection must not proceed.
func AllFitsFailed(conditionID string) *AppError {
	return New(CodeAllFitsFailed, fmt.Sprintf("all copula fits failed for condition %s", conditionID))
}

// NotFound flags a missing resource.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}
