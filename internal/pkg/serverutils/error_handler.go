package serverutils

import (
	"errors"

	"adaptive-rag-be/internal/service"
	"adaptive-rag-be/pkg/agent"
	"adaptive-rag-be/pkg/turnlock"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps domain errors onto HTTP statuses. A failed turn is an
// error response; the server itself never goes down with it.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.Is(err, service.ErrInvalidCredentials):
		code = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrChatSessionNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, turnlock.ErrTurnInFlight):
		code = fiber.StatusConflict
	case errors.Is(err, agent.ErrUnroutableQuestion):
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, agent.ErrMalformedClassification):
		code = fiber.StatusBadGateway
	}

	return ctx.Status(code).JSON(Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}
