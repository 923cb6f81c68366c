package serverutils

import (
	"errors"
	"net/http"

	"ai-chat-quota-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler builds the fiber ErrorHandler for errors that escape a controller.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = http.StatusText(fe.Code)
		}

		if code >= fiber.StatusInternalServerError {
			log.Error(logger.ModuleHTTP, "Unhandled request error", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(DetailedErrorResponse(ctx, code, message, err.Error()))
	}
}
