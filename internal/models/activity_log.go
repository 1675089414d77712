package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity log verbs written by the engine.
const (
	ActivityDecisionHeld     = "moderation.decision_held"
	ActivityBanAccount       = "moderation.ban_account"
	ActivityDisableListing   = "moderation.disable_listing"
	ActivityRejectVersions   = "moderation.reject_versions"
	ActivityDelayedRejection = "moderation.delayed_rejection_scheduled"
	ActivityDeleteRating     = "moderation.delete_rating"
	ActivityDeleteCollection = "moderation.delete_collection"
	ActivityApprove          = "moderation.approve"
	ActivityResolvedNoAction = "moderation.resolved_no_action"
	ActivityForwarded        = "moderation.forwarded"
)

// ActivityLog is the audit trail row produced by every engine mutation and
// hold. Reviewer tools render these chronologically per target.
type ActivityLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetRef `gorm:"embedded"`

	Action string `gorm:"not null;size:100;index" json:"action"`

	DecisionID *uuid.UUID `gorm:"type:uuid;index" json:"decision_id,omitempty"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`

	Details datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`

	CreatedAt time.Time `json:"created_at"`
}
