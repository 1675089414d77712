package models

import (
	"time"

	"github.com/google/uuid"
)

// Appeal records a request to reconsider a decision. ReportID identifies the
// appealing reporter; a nil ReportID means the target's owner appeals. The
// engine enforces at most one open appeal per (decision, appellant) pair.
type Appeal struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	DecisionID uuid.UUID `gorm:"type:uuid;not null;index" json:"decision_id"`
	Decision   *Decision `gorm:"foreignKey:DecisionID" json:"-"`

	ReportID *uuid.UUID `gorm:"type:uuid;index" json:"report_id,omitempty"`
	Report   *Report    `gorm:"foreignKey:ReportID" json:"-"`

	// CaseID is the child case the appeal is adjudicated under.
	CaseID *uuid.UUID `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case      `gorm:"foreignKey:CaseID" json:"-"`

	Text string `gorm:"type:text" json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appeal) ByReporter() bool { return a.ReportID != nil }
