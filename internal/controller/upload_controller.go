package controller

import (
	"io"

	"ai-traininglab-be/internal/pkg/serverutils"
	"ai-traininglab-be/internal/service"
	"ai-traininglab-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	UploadFiles(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
}

func NewUploadController(uploadService service.IUploadService) IUploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("files", c.UploadFiles)
}

func (c *uploadController) UploadFiles(ctx *fiber.Ctx) error {
	userId := userIdFromCtx(ctx)

	sessionId, err := uuid.Parse(ctx.FormValue("chat_session_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "chat_session_id is required")
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files provided")
	}

	files := make([]ingest.PendingFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}
		files = append(files, ingest.PendingFile{
			Name:     h.Filename,
			MimeType: h.Header.Get("Content-Type"),
			Size:     h.Size,
			Content:  content,
		})
	}

	res, err := c.uploadService.UploadFiles(ctx.Context(), userId, sessionId, files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload files", res))
}
