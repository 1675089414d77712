package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report reasons.
const (
	ReasonHatefulViolentDeceptive = "hateful_violent_deceptive"
	ReasonIllegal                 = "illegal"
	ReasonPolicyViolation         = "policy_violation"
	ReasonDoesNotWork             = "does_not_work"
	ReasonFeedbackSpam            = "feedback_spam"
	ReasonSomethingElse           = "something_else"
)

// LegalEscalationReasons must always reach a human even when the target was
// already reviewed.
var LegalEscalationReasons = map[string]bool{
	ReasonIllegal: true,
}

// Where on the platform the reported content was encountered.
const (
	LocationListingPage = "listing_page"
	LocationSearch      = "search"
	LocationBoth        = "both"
	LocationUnknown     = ""
)

// Report is a single abuse report against a target. The reporter is either
// an authenticated account or an anonymous email, never neither.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetRef `gorm:"embedded"`

	ReporterID    *uuid.UUID `gorm:"type:uuid;index" json:"reporter_id,omitempty"`
	ReporterEmail string     `gorm:"size:255" json:"reporter_email,omitempty"`
	Reporter      *Account   `gorm:"foreignKey:ReporterID" json:"-"`

	Reason             string `gorm:"not null;size:50;index" json:"reason"`
	IllegalCategory    string `gorm:"size:100" json:"illegal_category,omitempty"`
	IllegalSubcategory string `gorm:"size:100" json:"illegal_subcategory,omitempty"`
	Location           string `gorm:"size:50" json:"location,omitempty"`
	Message            string `gorm:"type:text" json:"message"`

	// ListingVersionID pins the version the reporter saw, when known.
	ListingVersionID *uuid.UUID `gorm:"type:uuid" json:"listing_version_id,omitempty"`

	CaseID *uuid.UUID `gorm:"type:uuid;index" json:"case_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Email returns the address notifications for this report should go to, or
// "" when the reporter cannot be reached.
func (r *Report) Email() string {
	if r.Reporter != nil && r.Reporter.Email != "" {
		return r.Reporter.Email
	}
	return r.ReporterEmail
}

func (r *Report) Anonymous() bool { return r.ReporterID == nil }
