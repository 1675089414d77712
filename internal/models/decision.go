package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionKind enumerates the enforcement actions a decision can carry.
type ActionKind string

const (
	ActionApprove               ActionKind = "approve"
	ActionApproveVersion        ActionKind = "approve_version"
	ActionDisableListing        ActionKind = "disable_listing"
	ActionRejectVersions        ActionKind = "reject_versions"
	ActionRejectVersionsDelayed ActionKind = "reject_versions_delayed"
	ActionBanAccount            ActionKind = "ban_account"
	ActionDeleteRating          ActionKind = "delete_rating"
	ActionDeleteCollection      ActionKind = "delete_collection"
	ActionIgnore                ActionKind = "ignore"
	ActionClosedNoAction        ActionKind = "closed_no_action"
	ActionForwardLegal          ActionKind = "forward_legal"
	ActionRequeue               ActionKind = "requeue"
)

// Removal reports whether the action takes content down or locks an account.
func (a ActionKind) Removal() bool {
	switch a {
	case ActionDisableListing, ActionRejectVersions, ActionRejectVersionsDelayed,
		ActionBanAccount, ActionDeleteRating, ActionDeleteCollection:
		return true
	}
	return false
}

// Approval reports whether the action keeps or reinstates content.
func (a ActionKind) Approval() bool {
	return a == ActionApprove || a == ActionApproveVersion
}

func (a ActionKind) Valid() bool {
	switch a {
	case ActionApprove, ActionApproveVersion, ActionDisableListing,
		ActionRejectVersions, ActionRejectVersionsDelayed, ActionBanAccount,
		ActionDeleteRating, ActionDeleteCollection, ActionIgnore,
		ActionClosedNoAction, ActionForwardLegal, ActionRequeue:
		return true
	}
	return false
}

// DecisionMetadata is the per-action payload stored alongside a decision.
type DecisionMetadata struct {
	// VersionIDs are the listing versions a (delayed) rejection applies to.
	VersionIDs []uuid.UUID `json:"version_ids,omitempty"`
	// DelayedUntil is the deadline after which a delayed rejection disables
	// the affected versions.
	DelayedUntil *time.Time `json:"delayed_until,omitempty"`
}

// Decision is one recorded adjudication of a target. Core fields become
// immutable once ActionDate is set; only chain pointers (AppealCaseID) may be
// added afterwards.
type Decision struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetRef `gorm:"embedded"`

	Action ActionKind `gorm:"not null;size:50;index" json:"action"`
	Notes  string     `gorm:"type:text" json:"notes"`

	CaseID *uuid.UUID `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case      `gorm:"foreignKey:CaseID" json:"-"`

	// CinderID is the external service's decision id, set once synced.
	CinderID *string `gorm:"size:64;uniqueIndex" json:"cinder_id,omitempty"`

	// ActionDate is null until the action has actually been executed; a held
	// decision keeps it null indefinitely.
	ActionDate *time.Time `gorm:"index" json:"action_date,omitempty"`

	// OverrideOfID points at the decision this one supersedes.
	OverrideOfID *uuid.UUID `gorm:"type:uuid;index" json:"override_of_id,omitempty"`
	OverrideOf   *Decision  `gorm:"foreignKey:OverrideOfID" json:"-"`

	// AppealCaseID points at the child case opened when this decision was
	// appealed.
	AppealCaseID *uuid.UUID `gorm:"type:uuid;index" json:"appeal_case_id,omitempty"`
	AppealCase   *Case      `gorm:"foreignKey:AppealCaseID" json:"-"`

	// ReviewerID is null for decisions of automated or external origin.
	ReviewerID *uuid.UUID `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`
	Reviewer   *Account   `gorm:"foreignKey:ReviewerID" json:"-"`

	Policies []Policy `gorm:"many2many:decision_policies" json:"-"`

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Decision) Executed() bool { return d.ActionDate != nil }

func (d *Decision) Synced() bool { return d.CinderID != nil && *d.CinderID != "" }

func (d *Decision) Meta() DecisionMetadata {
	var m DecisionMetadata
	if len(d.Metadata) > 0 {
		_ = json.Unmarshal(d.Metadata, &m)
	}
	return m
}

func (d *Decision) SetMeta(m DecisionMetadata) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	d.Metadata = datatypes.JSON(b)
	return nil
}
