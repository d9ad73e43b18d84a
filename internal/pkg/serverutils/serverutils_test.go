package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"drive-copilot-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/protected", JwtMiddleware(testSecret), handler)
	return app
}

func decodeError(t *testing.T, body io.Reader) ErrorResponseBody {
	t.Helper()
	var out ErrorResponseBody
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestJwtMiddleware(t *testing.T) {
	app := newTestApp(func(ctx *fiber.Ctx) error {
		return ctx.SendString(UserID(ctx))
	})

	token, err := SignToken(testSecret, "user-1", "a@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "user-1", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	other, err := SignToken("another-secret", "user-1", "", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	expired, err := SignToken(testSecret, "user-1", "", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignToken_RequiresSecret(t *testing.T) {
	_, err := SignToken("", "user-1", "", time.Hour)
	assert.Error(t, err)
}

func TestErrorHandlerMiddleware_MapsKinds(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{apperror.ErrAuthenticationRequired, fiber.StatusUnauthorized, apperror.ErrAuthenticationRequired.Message},
		{apperror.New(apperror.KindNotFound, "I couldn't find 'x' in your Drive."), fiber.StatusNotFound, "I couldn't find 'x' in your Drive."},
		{apperror.New(apperror.KindBadRequest, "message is required"), fiber.StatusBadRequest, "message is required"},
		{apperror.Wrap(apperror.KindCollaborator, "Google Drive request failed.", errors.New("socket closed")), fiber.StatusInternalServerError, "Google Drive request failed."},
		{errors.New("raw driver error"), fiber.StatusInternalServerError, internalErrorMessage},
		{fiber.NewError(fiber.StatusTeapot, "teapot"), fiber.StatusTeapot, "teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body := decodeError(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type askRequest struct {
		Message string `validate:"required,max=5"`
	}

	assert.NoError(t, ValidateRequest(askRequest{Message: "hi"}))

	err := ValidateRequest(askRequest{})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "Message is required", apperror.UserMessage(err, ""))

	err = ValidateRequest(askRequest{Message: "too long"})
	assert.Equal(t, "Message must be at most 5 characters", apperror.UserMessage(err, ""))
}
