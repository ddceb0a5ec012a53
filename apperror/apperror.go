// Package apperror defines a centralized system for application-specific errors.
// Every failure the HTTP layer can report maps to exactly one ErrorType, and every
// ErrorType maps to exactly one HTTP status code. The terminal error boundary in
// package render turns an *AppError into the JSON envelope sent to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType is an enumeration (using `iota`) for the categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// BadRequestError represents missing or malformed input
	BadRequestError
	// ValidationError represents input that failed struct validation
	ValidationError
	// UnauthorizedError represents an authentication failure: no token, a token that
	// failed verification, or an identity that no longer exists.
	UnauthorizedError
	// ForbiddenError represents an authenticated caller who is not entitled to the action
	ForbiddenError
	// NotFoundError represents a referenced entity that does not exist
	NotFoundError
	// DatabaseError represents an error originating from the store
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// InternalError represents a generic internal server error
	InternalError
	// MethodNotAllowedError represents a known path requested with an unsupported method
	MethodNotAllowedError
)

// String returns a short name used in logs.
func (t ErrorType) String() string {
	switch t {
	case BadRequestError:
		return "bad_request"
	case ValidationError:
		return "validation"
	case UnauthorizedError:
		return "unauthorized"
	case ForbiddenError:
		return "forbidden"
	case NotFoundError:
		return "not_found"
	case DatabaseError:
		return "database"
	case ConfigError:
		return "config"
	case InternalError:
		return "internal"
	case MethodNotAllowedError:
		return "method_not_allowed"
	default:
		return "unknown"
	}
}

// AppError is the custom error type for the application.
// It allows wrapping an underlying error (`Err`) for diagnostics while only `Message`
// is ever shown to clients.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error

	callers []uintptr
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is / errors.As can inspect the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case BadRequestError, ValidationError:
		return http.StatusBadRequest
	case UnauthorizedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case MethodNotAllowedError:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Stack renders the call stack captured when the error was constructed,
// one "function\n\tfile:line" pair per frame.
func (e *AppError) Stack() string {
	if len(e.callers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Error())
	frames := runtime.CallersFrames(e.callers)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// NewAppError creates a new AppError. It is the generic constructor the typed
// constructors below delegate to.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return newAppError(errType, message, underlyingError)
}

func newAppError(errType ErrorType, message string, underlyingError error) *AppError {
	// Skip runtime.Callers, newAppError and the exported constructor.
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
		callers: pcs[:n],
	}
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return newAppError(BadRequestError, message, underlyingError)
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return newAppError(ValidationError, message, underlyingError)
}

// NewUnauthorizedError creates a new UnauthorizedError (401, authentication)
func NewUnauthorizedError(message string, underlyingError error) *AppError {
	return newAppError(UnauthorizedError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError (403, authorization)
func NewForbiddenError(message string, underlyingError error) *AppError {
	return newAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return newAppError(NotFoundError, message, underlyingError)
}

// NewMethodNotAllowedError creates a new MethodNotAllowedError
func NewMethodNotAllowedError(message string, underlyingError error) *AppError {
	return newAppError(MethodNotAllowedError, message, underlyingError)
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return newAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return newAppError(ConfigError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return newAppError(InternalError, message, underlyingError)
}

// ErrorResponse is the JSON envelope written for every failed request.
// Stack is only populated outside production.
type ErrorResponse struct {
	Message string `json:"message" example:"not authorized, no token"`
	Stack   string `json:"stack,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse. The underlying `Err` is never
// included; withStack controls whether the captured call stack is echoed.
func (e *AppError) ToResponse(withStack bool) ErrorResponse {
	resp := ErrorResponse{Message: e.Message}
	if withStack {
		resp.Stack = e.Stack()
	}
	return resp
}

// FromError finds the first *AppError in err's chain.
func FromError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	appErr, ok := FromError(err)
	return ok && appErr.Type == errType
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return Is(err, NotFoundError) }

// IsUnauthorized checks if an error is an authentication failure
func IsUnauthorized(err error) bool { return Is(err, UnauthorizedError) }

// IsForbidden checks if an error is an authorization failure
func IsForbidden(err error) bool { return Is(err, ForbiddenError) }

// IsBadRequest checks if an error is a BadRequest or Validation error
func IsBadRequest(err error) bool { return Is(err, BadRequestError) || Is(err, ValidationError) }
