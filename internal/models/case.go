package models

import (
	"time"

	"github.com/google/uuid"
)

// Case is one unit of moderation work tracked against the external case
// service. It aggregates the reports filed against a target and the
// chronological decisions taken on them. A case is created lazily: the first
// time a report needs escalation, or the first time a human records a
// decision.
type Case struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetRef `gorm:"embedded"`

	// CinderJobID is the external service's id, set on first sync.
	CinderJobID *string `gorm:"size:64;uniqueIndex" json:"cinder_job_id,omitempty"`

	// ResolvableLocally marks cases our own reviewer tools may adjudicate,
	// as opposed to cases living only in the external tool's queues.
	ResolvableLocally bool `gorm:"not null;default:false" json:"resolvable_locally"`

	// FromQueue records the external queue the case was last known to sit in.
	FromQueue string `gorm:"size:100" json:"from_queue,omitempty"`

	Reports   []Report   `gorm:"foreignKey:CaseID" json:"-"`
	Decisions []Decision `gorm:"foreignKey:CaseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the case is still awaiting adjudication. Requires
// Decisions to be preloaded.
func (c *Case) Open() bool {
	return len(c.Decisions) == 0
}

// Synced reports whether the case exists in the external service.
func (c *Case) Synced() bool {
	return c.CinderJobID != nil && *c.CinderJobID != ""
}
