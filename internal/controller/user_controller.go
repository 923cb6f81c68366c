// FILE: internal/controller/user_controller.go
package controller

import (
	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdatePaymentMethod(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
	auth    fiber.Handler
}

func NewUserController(service service.IUserService, auth fiber.Handler) IUserController {
	return &userController{service: service, auth: auth}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Get("/me", c.auth, c.GetProfile)
	h.Put("/me/payment-method", c.auth, c.UpdatePaymentMethod)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.GetProfile(ctx.UserContext(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

func (c *userController) UpdatePaymentMethod(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var req dto.UpdatePaymentMethodRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.UpdatePaymentMethod(ctx.UserContext(), userId, &req)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment method updated", res))
}
