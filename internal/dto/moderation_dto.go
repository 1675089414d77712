package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Target             TargetRequest `json:"target"`
	ReporterEmail      string        `json:"reporter_email,omitempty"`
	Reason             string        `json:"reason"`
	IllegalCategory    string        `json:"illegal_category,omitempty"`
	IllegalSubcategory string        `json:"illegal_subcategory,omitempty"`
	Location           string        `json:"location,omitempty"`
	Message            string        `json:"message,omitempty"`
	ListingVersionID   *uuid.UUID    `json:"listing_version_id,omitempty"`
}

type RecordDecisionRequest struct {
	Target       TargetRequest `json:"target"`
	Action       string        `json:"action"`
	Notes        string        `json:"notes,omitempty"`
	CaseID       *uuid.UUID    `json:"case_id,omitempty"`
	OverrideOfID *uuid.UUID    `json:"override_of_id,omitempty"`
	PolicyIDs    []uuid.UUID   `json:"policy_ids,omitempty"`
	VersionIDs   []uuid.UUID   `json:"version_ids,omitempty"`
	DelayedUntil *time.Time    `json:"delayed_until,omitempty"`
}

type AppealRequest struct {
	DecisionID uuid.UUID  `json:"decision_id"`
	ReportID   *uuid.UUID `json:"report_id,omitempty"`
	Text       string     `json:"text"`
}
