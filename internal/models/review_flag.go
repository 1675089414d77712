package models

import (
	"time"

	"github.com/google/uuid"
)

// Reasons a version can be flagged for human review.
const (
	ReviewFlagAbuse      = "abuse"
	ReviewFlagEscalation = "escalation"
	ReviewFlagAppeal     = "appeal"
	ReviewFlagSecondLook = "second_look"
)

// VersionReviewFlag marks a listing version as needing human review. A flag
// stays active until ClearedAt is set; flags are never hard-deleted so the
// review history survives.
type VersionReviewFlag struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VersionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"version_id"`
	Version   *ListingVersion `gorm:"foreignKey:VersionID" json:"-"`

	Reason    string     `gorm:"not null;size:50;index" json:"reason"`
	ClearedAt *time.Time `json:"cleared_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *VersionReviewFlag) Active() bool { return f.ClearedAt == nil }
