package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Validation", NewValidationError("bad input"), fiber.StatusBadRequest},
		{"Authentication", NewAuthenticationError("Invalid Credentials"), fiber.StatusBadRequest},
		{"Conflict", NewConflictError("already accepted"), fiber.StatusBadRequest},
		{"Unauthorized", NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"Not Found", NewNotFoundError("missing"), fiber.StatusNotFound},
		{"Internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"Plain Error", errors.New("boom"), fiber.StatusInternalServerError},
		{"Wrapped AppError", fmt.Errorf("context: %w", NewNotFoundError("missing")), fiber.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestInternalErrorMessageLeaksCause(t *testing.T) {
	err := NewInternalError(errors.New("connection reset"))
	assert.Equal(t, "An unexpected error occurred: connection reset", err.Message)
	assert.ErrorContains(t, err, "connection reset")
}

func TestNewEnvelopeDefaults(t *testing.T) {
	env := NewEnvelope(false, "msg", nil, nil)
	assert.NotNil(t, env.Detail)
	assert.NotNil(t, env.ExtraInformation)
	assert.Equal(t, "msg", env.Message)
}
