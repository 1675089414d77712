package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/craftbazaar/moderation-engine/internal/dto"
	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	events       *services.CinderEventService
	webhookToken string
}

func NewWebhookHandler(events *services.CinderEventService, webhookToken string) *WebhookHandler {
	return &WebhookHandler{events: events, webhookToken: webhookToken}
}

// HandleCinder receives decision and queue-move events from the case
// service. Auth is a shared bearer token compared in constant time.
func (h *WebhookHandler) HandleCinder(c *fiber.Ctx) error {
	if h.webhookToken == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte("Bearer "+h.webhookToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var webhook dto.CinderWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	metrics.WebhookEvents.WithLabelValues(webhook.Event).Inc()

	switch webhook.Event {
	case dto.WebhookEventDecision:
		d, err := h.events.ProcessDecision(c.Context(), services.DecisionEvent{
			JobID:            webhook.Payload.JobID,
			DecisionCinderID: webhook.Payload.DecisionID,
			Action:           models.ActionKind(webhook.Payload.Action),
			Notes:            webhook.Payload.Notes,
			PolicyCinderIDs:  webhook.Payload.PolicyUUIDs,
			Queue:            webhook.Payload.QueueSlug,
			ReviewerID:       webhook.Payload.ReviewerID,
			VersionIDs:       webhook.Payload.VersionIDs,
		})
		if err != nil {
			slog.Error("webhook decision processing failed",
				"job_id", webhook.Payload.JobID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to process decision event",
			})
		}
		slog.Info("webhook decision processed",
			"job_id", webhook.Payload.JobID, "decision_id", d.ID)
		return c.JSON(fiber.Map{"received": true})

	case dto.WebhookEventQueueMove:
		if err := h.events.ProcessQueueMove(services.QueueMoveEvent{
			JobID: webhook.Payload.JobID,
			Queue: webhook.Payload.QueueSlug,
			Notes: webhook.Payload.QueueMoveNotes,
		}); err != nil {
			slog.Error("webhook queue move failed",
				"job_id", webhook.Payload.JobID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to process queue move",
			})
		}
		return c.JSON(fiber.Map{"received": true})

	default:
		slog.Warn("unknown webhook event", "event", webhook.Event)
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}
}
