package controller

import (
	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/pkg/serverutils"
	"ai-traininglab-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	SelectSession(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	SetSessionModel(ctx *fiber.Ctx) error
	UpdateContextPrompt(ctx *fiber.Ctx) error
	UpdateExtract(ctx *fiber.Ctx) error
	GetExtract(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatService service.IChatService
}

func NewChatbotController(chatService service.IChatService) IChatbotController {
	return &chatbotController{
		chatService: chatService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session", c.CreateSession)
	h.Get("sessions", c.GetAllSessions)
	h.Put("session/:id/select", c.SelectSession)
	h.Get("session/:id/history", c.GetChatHistory)
	h.Put("session/:id/title", c.RenameSession)
	h.Put("session/:id/model", c.SetSessionModel)
	h.Put("session/:id/context-prompt", c.UpdateContextPrompt)
	h.Put("session/:id/extract", c.UpdateExtract)
	h.Get("session/:id/extract", c.GetExtract)
	h.Post("chat", c.SendChat)
	h.Delete("session", c.DeleteSession)
}

func userIdFromCtx(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func sessionIdParam(ctx *fiber.Ctx) uuid.UUID {
	id, _ := uuid.Parse(ctx.Params("id"))
	return id
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.chatService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatbotController) GetAllSessions(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	res, err := c.chatService.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *chatbotController) SelectSession(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	if err := c.chatService.SelectSession(ctx.Context(), userId, sessionIdParam(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success select session", nil))
}

func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	res, err := c.chatService.GetChatHistory(ctx.Context(), userId, sessionIdParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) RenameSession(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.RenameSession(ctx.Context(), userId, sessionIdParam(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename session", nil))
}

func (c *chatbotController) SetSessionModel(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.SetSessionModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.SetSessionModel(ctx.Context(), userId, sessionIdParam(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success set session model", nil))
}

func (c *chatbotController) UpdateContextPrompt(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.UpdateContextPromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.chatService.UpdateContextPrompt(ctx.Context(), userId, sessionIdParam(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update context prompt", nil))
}

func (c *chatbotController) UpdateExtract(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.UpdateExtractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.UpdateExtract(ctx.Context(), userId, sessionIdParam(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update extract", res))
}

func (c *chatbotController) GetExtract(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	res, err := c.chatService.GetExtract(ctx.Context(), userId, sessionIdParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get extract", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	var req dto.DeleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
