package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func SuccessResponse(message string, data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": message,
		"data":    data,
	}
}

func ErrorResponse(code int, message string) fiber.Map {
	return fiber.Map{
		"success": false,
		"code":    code,
		"message": message,
	}
}

// DetailedErrorResponse is the body used for mapped domain errors and the global error handler.
func DetailedErrorResponse(ctx *fiber.Ctx, code int, message string, cause string) fiber.Map {
	return fiber.Map{
		"success":   false,
		"code":      code,
		"message":   message,
		"error":     cause,
		"path":      ctx.Path(),
		"method":    ctx.Method(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
