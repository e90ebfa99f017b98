package controller

import (
	"ai-traininglab-be/internal/pkg/serverutils"
	"ai-traininglab-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type modelController struct {
	chatService service.IChatService
}

func NewModelController(chatService service.IChatService) IModelController {
	return &modelController{
		chatService: chatService,
	}
}

func (c *modelController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/models/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
}

func (c *modelController) List(ctx *fiber.Ctx) error {
	res, err := c.chatService.ListModels(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list models", res))
}
