package serverutils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"ai-traininglab-be/internal/engine"
	"ai-traininglab-be/pkg/ingest"
	"ai-traininglab-be/pkg/usage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newErrorApp(err error) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"empty message", engine.ErrEmptyMessage, fiber.StatusBadRequest},
		{"no model selected", engine.ErrNoModelSelected, fiber.StatusBadRequest},
		{"unknown session", engine.ErrUnknownSession, fiber.StatusNotFound},
		{"file rejected", &ingest.ValidationError{FileName: "big.pdf", Reason: "too large"}, fiber.StatusBadRequest},
		{"limit exceeded", &usage.LimitExceededError{Limit: 50, Used: 50}, fiber.StatusTooManyRequests},
		{"fiber error passthrough", fiber.NewError(fiber.StatusConflict, "conflict"), fiber.StatusConflict},
		{"unclassified", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newErrorApp(tc.err).Test(httptest.NewRequest("GET", "/boom", nil))
			assert.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerPassesSuccessThrough(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse[any]("ok", nil))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
