package controller

import (
	"errors"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/service"
	"ai-chat-quota-be/pkg/quota"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errInvalidBundleID = errors.New("invalid bundle id")

// respondError translates service and domain errors into the HTTP error body.
// Anything unrecognised is handed to the fiber ErrorHandler as a 500.
func respondError(ctx *fiber.Ctx, err error) error {
	code, message := statusFor(err)
	if code == fiber.StatusInternalServerError {
		return err
	}
	return ctx.Status(code).JSON(serverutils.DetailedErrorResponse(ctx, code, message, err.Error()))
}

func statusFor(err error) (int, string) {
	var validationErr *serverutils.ValidationError
	switch {
	case quota.IsPaymentRequired(err):
		return fiber.StatusPaymentRequired, "Quota Exceeded"
	case errors.Is(err, service.ErrBundleNotFound), errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound, "Not Found"
	case errors.Is(err, service.ErrBundleForbidden):
		return fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, entity.ErrInvalidStateTransition):
		return fiber.StatusConflict, "Invalid State Transition"
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict, "Conflict"
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, errInvalidBundleID):
		return fiber.StatusBadRequest, "Validation Error"
	case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, serverutils.ErrMissingUser):
		return fiber.StatusUnauthorized, "Unauthorized"
	default:
		return fiber.StatusInternalServerError, "Internal Server Error"
	}
}

// parseBody decodes and validates the JSON body into req.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return &serverutils.ValidationError{Messages: []string{"request body must be valid JSON"}}
	}
	return serverutils.ValidateStruct(req)
}

func bundleIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("bundleId"))
	if err != nil {
		return uuid.Nil, errInvalidBundleID
	}
	return id, nil
}
