// FILE: internal/controller/subscription_controller.go
package controller

import (
	"context"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	CreateBundle(ctx *fiber.Ctx) error
	GetPublicBundles(ctx *fiber.Ctx) error
	GetBundles(ctx *fiber.Ctx) error
	GetActiveBundles(ctx *fiber.Ctx) error
	CancelBundle(ctx *fiber.Ctx) error
	RenewBundle(ctx *fiber.Ctx) error
	ToggleAutoRenew(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
	auth    fiber.Handler
}

func NewSubscriptionController(service service.ISubscriptionService, auth fiber.Handler) ISubscriptionController {
	return &subscriptionController{service: service, auth: auth}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscriptions")
	h.Get("/public-bundles", c.GetPublicBundles)

	h.Post("/bundles", c.auth, c.CreateBundle)
	h.Get("/bundles", c.auth, c.GetBundles)
	h.Get("/bundles/active", c.auth, c.GetActiveBundles)
	h.Patch("/bundles/:bundleId/cancel", c.auth, c.CancelBundle)
	h.Patch("/bundles/:bundleId/renew", c.auth, c.RenewBundle)
	h.Patch("/bundles/:bundleId/toggle-auto-renew", c.auth, c.ToggleAutoRenew)
}

func (c *subscriptionController) CreateBundle(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var req dto.CreateBundleRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.CreateBundle(ctx.UserContext(), userId, &req)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusCreated,
		"message": "Bundle created",
		"data":    res,
	})
}

func (c *subscriptionController) GetPublicBundles(ctx *fiber.Ctx) error {
	res, err := c.service.GetPublicBundles(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Public bundles", res))
}

func (c *subscriptionController) GetBundles(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.GetBundles(ctx.UserContext(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Bundles", res))
}

func (c *subscriptionController) GetActiveBundles(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := c.service.GetActiveBundles(ctx.UserContext(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Active bundles", res))
}

func (c *subscriptionController) CancelBundle(ctx *fiber.Ctx) error {
	return c.mutate(ctx, "Bundle cancelled", c.service.CancelBundle)
}

func (c *subscriptionController) RenewBundle(ctx *fiber.Ctx) error {
	return c.mutate(ctx, "Bundle renewal processed", c.service.RenewBundle)
}

func (c *subscriptionController) ToggleAutoRenew(ctx *fiber.Ctx) error {
	return c.mutate(ctx, "Auto-renew updated", c.service.ToggleAutoRenew)
}

func (c *subscriptionController) mutate(
	ctx *fiber.Ctx,
	message string,
	op func(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error),
) error {
	userId, err := serverutils.UserIDFromContext(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	bundleId, err := bundleIDParam(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	res, err := op(ctx.UserContext(), userId, bundleId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}
