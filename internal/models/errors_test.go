package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusForCode(CodeNotFound))
	assert.Equal(t, fiber.StatusBadRequest, StatusForCode(CodeAlreadyExists))
	assert.Equal(t, fiber.StatusBadRequest, StatusForCode(CodeValidation))
	assert.Equal(t, fiber.StatusUnauthorized, StatusForCode(CodeUnauthorized))
	assert.Equal(t, fiber.StatusForbidden, StatusForCode(CodeForbidden))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForCode(CodeInternal))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForCode("SOMETHING_ELSE"))
}

func TestErrorConstructors(t *testing.T) {
	notFound := NewNotFoundError("Post", "id", 42)
	assert.Equal(t, CodeNotFound, notFound.Code)
	assert.Equal(t, "Post with id '42' not found", notFound.Message)

	exists := NewAlreadyExistsError("Tag", "go")
	assert.Equal(t, CodeAlreadyExists, exists.Code)
	assert.Equal(t, "Tag with name 'go' already exists", exists.Message)

	fieldErr := NewFieldValidationError(map[string]string{"email": "invalid email"})
	assert.Equal(t, CodeValidation, fieldErr.Code)
	assert.Equal(t, "invalid email", fieldErr.Fields["email"])
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewInternalError(cause)
	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
}

func respondOn(t *testing.T, err error) (int, ErrorDetails) {
	t.Helper()
	app := fiber.New()
	app.Get("/things/1", func(c *fiber.Ctx) error {
		return RespondWithError(c, err)
	})

	resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/things/1", nil))
	require.NoError(t, reqErr)
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var details ErrorDetails
	require.NoError(t, json.Unmarshal(body, &details))
	return resp.StatusCode, details
}

func TestRespondWithError_AppError(t *testing.T) {
	status, details := respondOn(t, NewNotFoundError("Post", "id", 7))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Post with id '7' not found", details.Message)
	assert.Equal(t, CodeNotFound, details.ErrorCode)
	assert.Equal(t, "/things/1", details.Path)
	assert.False(t, details.Timestamp.IsZero())
	assert.Nil(t, details.Errors)
}

func TestRespondWithError_FieldErrors(t *testing.T) {
	status, details := respondOn(t, NewFieldValidationError(map[string]string{
		"username": "username must be between 3 and 20 characters",
	}))

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, details.ErrorCode)
	assert.Equal(t, "username must be between 3 and 20 characters", details.Errors["username"])
}

func TestRespondWithError_UnknownErrorStaysGeneric(t *testing.T) {
	status, details := respondOn(t, errors.New("pq: relation posts does not exist"))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, CodeInternal, details.ErrorCode)
	assert.Equal(t, "internal server error", details.Message)
	assert.NotContains(t, details.Message, "pq:")
}
