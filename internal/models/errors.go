package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies an application error into one of the externally
// visible failure classes.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindValidation      ErrorKind = "VALIDATION_FAILED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindInternal        ErrorKind = "INTERNAL"
)

// FieldViolation describes a single failed field-level check, attached to
// validation errors for client display.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope rendered to callers.
type ErrorResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// AppError is a classified application error.
type AppError struct {
	Kind       ErrorKind
	Message    string
	Violations []FieldViolation
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to its HTTP status class.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// NewUnauthenticatedError reports a missing, malformed, or expired
// credential. All credential failures collapse to this one error so the
// response does not leak which check failed.
func NewUnauthenticatedError() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "Not authenticated."}
}

// NewValidationError reports failed field-level checks.
func NewValidationError(message string, violations ...FieldViolation) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Violations: violations}
}

// NewForbiddenError reports that the resource exists but the caller does
// not own it.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NewNotFoundError reports that a resource id did not resolve.
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Could not find %s %v.", resource, id),
	}
}

// NewConflictError reports a stale-version write rejected by optimistic
// concurrency control.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewInternalError wraps an unexpected storage or I/O failure.
func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error.", Err: err}
}

// RespondWithError renders err as the uniform {message, data?} envelope.
// Errors without an explicit kind default to internal (500).
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	resp := ErrorResponse{Message: appErr.Message}
	if len(appErr.Violations) > 0 {
		resp.Data = appErr.Violations
	}
	return c.Status(appErr.StatusCode()).JSON(resp)
}
