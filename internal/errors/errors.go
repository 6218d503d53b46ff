package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"gotrial/domain/core"
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

// Wrap wraps an error with additional context, keeping an existing code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    codeForDomain(err),
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

// GetCode returns the code of the outermost AppError in the chain, the code
// implied by a domain sentinel, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if err == nil {
		return "UNKNOWN"
	}
	if code := codeForDomain(err); code != CodeInternalError {
		return code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeInvalidEffectSize    = "INVALID_EFFECT_SIZE"
	CodeInvalidDropoutRate   = "INVALID_DROPOUT_RATE"
	CodeInvalidDesign        = "INVALID_DESIGN"
	CodeUnsupportedMethod    = "UNSUPPORTED_METHOD"
	CodeExhausted            = "ALLOCATION_EXHAUSTED"
	CodeNonDeterministic     = "NON_DETERMINISTIC"
)

// FromDomain converts a domain error into an AppError carrying its code
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: codeForDomain(err), Message: err.Error(), Cause: err}
}

func codeForDomain(err error) string {
	switch {
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return CodeInvalidConfiguration
	case stderrors.Is(err, core.ErrInvalidEffectSize):
		return CodeInvalidEffectSize
	case stderrors.Is(err, core.ErrInvalidDropoutRate):
		return CodeInvalidDropoutRate
	case stderrors.Is(err, core.ErrInvalidDesign):
		return CodeInvalidDesign
	case stderrors.Is(err, core.ErrUnsupportedMethod):
		return CodeUnsupportedMethod
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	case stderrors.Is(err, core.ErrAllocationExhausted):
		return CodeExhausted
	case core.IsDeterminismError(err):
		return CodeNonDeterministic
	}
	return CodeInternalError
}

// HTTPStatus maps an error code onto a response status
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidConfiguration, CodeInvalidEffectSize, CodeInvalidDropoutRate,
		CodeInvalidDesign, CodeValidationError, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeExhausted, CodeNonDeterministic:
		return http.StatusConflict
	case CodeUnsupportedMethod:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
