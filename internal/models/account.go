package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a marketplace user: listing author, rating author or reporter.
type Account struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	DisplayName string         `gorm:"size:255" json:"display_name"`
	Role        string         `gorm:"size:20;default:'user'" json:"role"`
	BannedAt    *time.Time     `gorm:"index" json:"banned_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

const (
	RoleUser      = "user"
	RoleReviewer  = "reviewer"
	RoleAdmin     = "admin"
	RolePlatform  = "platform"
)

func (a *Account) TargetKind() TargetKind { return TargetAccount }
func (a *Account) TargetID() uuid.UUID    { return a.ID }
func (a *Account) Ref() TargetRef         { return AccountRef(a.ID) }

// Elevated reports whether the account holds staff-level permissions.
func (a *Account) Elevated() bool {
	return a.Role == RoleReviewer || a.Role == RoleAdmin || a.Role == RolePlatform
}

func (a *Account) Banned() bool { return a.BannedAt != nil }
