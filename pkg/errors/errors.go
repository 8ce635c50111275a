package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOtp         = errors.New("invalid otp")
	ErrOtpExpired         = errors.New("otp expired")
	ErrWeakPassword       = errors.New("weak password")
	ErrSamePassword       = errors.New("same password")
	ErrConfiguration      = errors.New("configuration error")
	ErrDependency         = errors.New("dependency failure")
	ErrRateLimited        = errors.New("rate limited")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// NotFoundGeneric creates a 404 error whose message does not reveal which
// resource or identifier was missing. Used on the forgot-password path so an
// absent account cannot be told apart from any other failed lookup.
func NotFoundGeneric() *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// InvalidCredentials creates a 401 error with a fixed message. The message is
// identical whether the account is missing or the password is wrong, so
// callers cannot enumerate registered emails.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredentials,
	}
}

// InvalidOtp creates a 400 error for a missing or mismatched one-time code.
func InvalidOtp() *AppError {
	return &AppError{
		Code:    "INVALID_OTP",
		Message: "invalid or unknown one-time code",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidOtp,
	}
}

// OtpExpired creates a 400 error for an expired one-time code.
func OtpExpired() *AppError {
	return &AppError{
		Code:    "OTP_EXPIRED",
		Message: "one-time code has expired, request a new one",
		Status:  http.StatusBadRequest,
		Err:     ErrOtpExpired,
	}
}

// WeakPassword creates a 400 error for a password below the minimum length.
func WeakPassword(minLength int) *AppError {
	return &AppError{
		Code:    "WEAK_PASSWORD",
		Message: fmt.Sprintf("password must be at least %d characters", minLength),
		Status:  http.StatusBadRequest,
		Err:     ErrWeakPassword,
	}
}

// SamePassword creates a 400 error when the new password equals the old one.
func SamePassword() *AppError {
	return &AppError{
		Code:    "SAME_PASSWORD",
		Message: "new password must be different from the current password",
		Status:  http.StatusBadRequest,
		Err:     ErrSamePassword,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Configuration creates a 500 error for a fatal misconfiguration, such as a
// missing token signing secret. These must never be swallowed.
func Configuration(message string) *AppError {
	return &AppError{
		Code:    "CONFIGURATION_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     ErrConfiguration,
	}
}

// Dependency creates a 503 error for an unreachable collaborator (store,
// notifier). The wrapped cause is kept for operator logs but the message
// leaks no internal detail.
func Dependency(err error) *AppError {
	return &AppError{
		Code:    "DEPENDENCY_FAILURE",
		Message: "a backing service is unavailable, try again later",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrDependency, err),
	}
}

// RateLimited creates a 429 error.
func RateLimited(message string) *AppError {
	return &AppError{
		Code:    "RATE_LIMITED",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     ErrRateLimited,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidOtp),
		errors.Is(err, ErrOtpExpired), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrSamePassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrDependency):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
