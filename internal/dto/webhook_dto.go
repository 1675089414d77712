package dto

import "github.com/google/uuid"

// Webhook event types the case service sends.
const (
	WebhookEventDecision  = "decision.created"
	WebhookEventQueueMove = "job.queue_moved"
)

type CinderWebhook struct {
	Event   string             `json:"event"`
	Payload CinderEventPayload `json:"payload"`
}

type CinderEventPayload struct {
	JobID          string      `json:"job_id"`
	DecisionID     string      `json:"decision_id,omitempty"`
	Action         string      `json:"action,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	PolicyUUIDs    []string    `json:"policy_uuids,omitempty"`
	QueueSlug      string      `json:"queue_slug,omitempty"`
	VersionIDs     []uuid.UUID `json:"version_ids,omitempty"`
	ReviewerID     *uuid.UUID  `json:"reviewer_id,omitempty"`
	QueueMoveNotes string      `json:"queue_move_notes,omitempty"`
}
