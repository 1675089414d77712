package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Policy is a versioned moderation rule. Policies form a hierarchy via
// ParentID and authorize zero or more enforcement actions. Read-mostly
// reference data synced from the external service's catalog.
type Policy struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Policy    `gorm:"foreignKey:ParentID" json:"-"`

	// CinderID maps this policy to the external catalog entry.
	CinderID string `gorm:"size:64;uniqueIndex" json:"cinder_id"`

	Name string `gorm:"not null;size:255" json:"name"`

	// Text is templated with named {placeholders} filled when rendering
	// notifications.
	Text string `gorm:"type:text" json:"text"`

	// EnforcementActions is the JSON list of ActionKind values this policy
	// authorizes.
	EnforcementActions datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"enforcement_actions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName renders "Parent: Child" for display. Requires Parent preloaded.
func (p *Policy) FullName() string {
	if p.Parent != nil {
		return p.Parent.FullName() + ": " + p.Name
	}
	return p.Name
}

func (p *Policy) Actions() []ActionKind {
	var raw []string
	if len(p.EnforcementActions) > 0 {
		_ = json.Unmarshal(p.EnforcementActions, &raw)
	}
	actions := make([]ActionKind, 0, len(raw))
	for _, s := range raw {
		actions = append(actions, ActionKind(s))
	}
	return actions
}

func (p *Policy) AuthorizesAction(a ActionKind) bool {
	for _, act := range p.Actions() {
		if act == a {
			return true
		}
	}
	return false
}

// RenderText substitutes named placeholders of the form {name}.
func (p *Policy) RenderText(values map[string]string) string {
	out := p.Text
	for k, v := range values {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
