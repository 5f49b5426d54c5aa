package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response wrapper used by every endpoint,
// success and failure alike.
type Envelope struct {
	IsAuthenticated  bool           `json:"is_authenticated"`
	Message          string         `json:"message"`
	Detail           any            `json:"detail"`
	ExtraInformation map[string]any `json:"extra_information"`
}

// NewEnvelope builds a response envelope. A nil detail is rendered as an
// empty object and a nil extra as an empty map, matching the wire contract.
func NewEnvelope(isAuthenticated bool, message string, detail any, extra map[string]any) Envelope {
	if detail == nil {
		detail = map[string]any{}
	}
	if extra == nil {
		extra = map[string]any{}
	}
	return Envelope{
		IsAuthenticated:  isAuthenticated,
		Message:          message,
		Detail:           detail,
		ExtraInformation: extra,
	}
}

// Error codes used by the AppError taxonomy.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
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

// Predefined error constructors
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Code:    CodeAuthentication,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure. The envelope message
// includes the internal error string.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("An unexpected error occurred: %v", err),
		Err:     err,
	}
}

// HTTPStatus maps an error to the HTTP status of its envelope. Validation,
// authentication and conflict failures are all 400 by contract; only
// missing/invalid credentials on protected routes use 401.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeAuthentication, CodeConflict:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the envelope for a failed request. The
// authentication flag reflects whether the caller was resolved by the auth
// middleware before the failure.
func RespondWithError(c *fiber.Ctx, err error) error {
	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	isAuthenticated := c.Locals("userID") != nil
	return c.Status(HTTPStatus(err)).JSON(NewEnvelope(isAuthenticated, message, nil, nil))
}
