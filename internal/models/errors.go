package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried on the wire in ErrorDetails.ErrorCode.
const (
	CodeNotFound      = "RESOURCE_NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeValidation    = "VALIDATION_FAILED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
)

// ErrorDetails is the standard error response body.
type ErrorDetails struct {
	Timestamp time.Time         `json:"timestamp"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	ErrorCode string            `json:"errorCode"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// AppError is a categorized application error.
type AppError struct {
	Code    string
	Message string
	Fields  map[string]string
	Err     error
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

// NewNotFoundError reports a missing entity, identified by the field that was
// used to look it up.
func NewNotFoundError(kind, field string, value any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with %s '%v' not found", kind, field, value),
	}
}

// NewAlreadyExistsError reports a uniqueness violation on an entity name.
func NewAlreadyExistsError(kind, name string) *AppError {
	return &AppError{
		Code:    CodeAlreadyExists,
		Message: fmt.Sprintf("%s with name '%s' already exists", kind, name),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError carries a per-field message map alongside the summary.
func NewFieldValidationError(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeAlreadyExists, CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standard error body for err. Non-AppError values
// become 500s with a generic message; the underlying detail stays server-side.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	body := ErrorDetails{
		Timestamp: time.Now(),
		Message:   appErr.Message,
		Path:      c.Path(),
		ErrorCode: appErr.Code,
		Errors:    appErr.Fields,
	}

	return c.Status(StatusForCode(appErr.Code)).JSON(body)
}
