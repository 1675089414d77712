package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookApp(token string) *fiber.App {
	app := fiber.New()
	h := NewWebhookHandler(nil, token)
	app.Post("/api/webhooks/cinder", h.HandleCinder)
	return app
}

func TestWebhookRejectsBadToken(t *testing.T) {
	app := webhookApp("expected")

	req := httptest.NewRequest("POST", "/api/webhooks/cinder", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer wrong")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookRejectsMissingToken(t *testing.T) {
	app := webhookApp("expected")

	req := httptest.NewRequest("POST", "/api/webhooks/cinder", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookUnconfiguredIs404(t *testing.T) {
	app := webhookApp("")

	req := httptest.NewRequest("POST", "/api/webhooks/cinder", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer anything")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWebhookIgnoresUnknownEvent(t *testing.T) {
	app := webhookApp("expected")

	req := httptest.NewRequest("POST", "/api/webhooks/cinder",
		strings.NewReader(`{"event":"job.reticulated","payload":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer expected")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
