// FILE: internal/controller/chat_controller.go
package controller

import (
	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	GetMonthlyUsage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	auth    fiber.Handler
}

func NewChatController(service service.IChatService, auth fiber.Handler) IChatController {
	return &chatController{service: service, auth: auth}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/", c.auth, c.Chat)
	h.Get("/history", c.auth, c.GetChatHistory)
	h.Get("/usage", c.auth, c.GetMonthlyUsage)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var req dto.ChatRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.Chat(ctx.UserContext(), userId, &req)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.GetChatHistory(ctx.UserContext(), userId, ctx.QueryInt("limit", 0), ctx.QueryInt("offset", 0))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatController) GetMonthlyUsage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.GetMonthlyUsage(ctx.UserContext(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Monthly usage", res))
}
