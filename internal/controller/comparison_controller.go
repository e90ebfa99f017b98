package controller

import (
	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/pkg/serverutils"
	"ai-traininglab-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IComparisonController interface {
	RegisterRoutes(r fiber.Router)
	Toggle(ctx *fiber.Ctx) error
	SetModel(ctx *fiber.Ctx) error
	GetModels(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type comparisonController struct {
	chatService service.IChatService
}

func NewComparisonController(chatService service.IChatService) IComparisonController {
	return &comparisonController{
		chatService: chatService,
	}
}

func (c *comparisonController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1/comparison")
	h.Use(serverutils.JwtMiddleware)
	h.Post("toggle", c.Toggle)
	h.Put("model/:side", c.SetModel)
	h.Get("models", c.GetModels)
	h.Post("chat", c.SendChat)
	h.Get("session/:id/messages", c.GetMessages)
}

func (c *comparisonController) Toggle(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.ToggleCompareRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.chatService.ToggleCompare(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle compare mode", res))
}

func (c *comparisonController) SetModel(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.SetComparisonModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SetComparisonModel(ctx.Context(), userId, ctx.Params("side"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set comparison model", res))
}

func (c *comparisonController) GetModels(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	res, err := c.chatService.GetComparisonModels(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get comparison models", res))
}

func (c *comparisonController) SendChat(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.SendComparisonRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendComparison(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send comparison chat", res))
}

func (c *comparisonController) GetMessages(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	res, err := c.chatService.GetComparisonMessages(ctx.Context(), userId, sessionIdParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get comparison messages", res))
}
