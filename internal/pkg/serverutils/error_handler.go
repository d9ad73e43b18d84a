package serverutils

import (
	"errors"
	"log"

	"drive-copilot-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Something went wrong. Please try again."

// StatusFor maps an error kind to the HTTP status returned to the client.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindBadRequest, apperror.KindParse:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts errors returned by handlers into the common
// JSON error body. Raw causes are logged, only user-facing messages are sent.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := apperror.UserMessage(err, internalErrorMessage)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
