package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/engine"
	"ai-traininglab-be/pkg/ingest"
	"ai-traininglab-be/pkg/usage"
)

// ErrorHandlerMiddleware maps typed service errors to HTTP statuses.
// Controllers just `return err`; this is the single translation point.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, err)
	}
}

func writeError(ctx *fiber.Ctx, err error) error {
	var limitErr *usage.LimitExceededError
	if errors.As(err, &limitErr) {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.LimitExceededResponse{
			Success:   false,
			Code:      fiber.StatusTooManyRequests,
			Message:   limitErr.Error(),
			ErrorType: "LIMIT_EXCEEDED",
			Data: dto.LimitExceededData{
				Limit:      limitErr.Limit,
				Used:       limitErr.Used,
				ResetAfter: limitErr.ResetAfter,
			},
		})
	}

	var validationErr *ingest.ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Error()))
	}

	// user-triggerable engine sentinels
	if errors.Is(err, engine.ErrEmptyMessage) || errors.Is(err, engine.ErrNoModelSelected) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
	}
	if errors.Is(err, engine.ErrUnknownSession) {
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
}
