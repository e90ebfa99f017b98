package server

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"ai-traininglab-be/internal/constant"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// A batch holding one file above the per-file ceiling plus one below it
// must reach the handler, so the pipeline can reject the oversize file
// individually instead of the transport rejecting the whole request.
func TestBodyLimitAdmitsMixedBatch(t *testing.T) {
	app := fiber.New(fiber.Config{BodyLimit: bodyLimit})
	app.Post("/echo", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	batch := bytes.Repeat([]byte("x"), 15*1024*1024+2*1024*1024)
	req := httptest.NewRequest("POST", "/echo", bytes.NewReader(batch))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestBodyLimitExceedsPerFileCeiling(t *testing.T) {
	assert.Greater(t, bodyLimit, constant.MaxUploadFileSize)
}
