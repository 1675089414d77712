package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection is a user-curated set of listings.
type Collection struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Slug      string         `gorm:"not null;size:255" json:"slug"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Author    Account        `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Collection) TargetKind() TargetKind { return TargetCollection }
func (c *Collection) TargetID() uuid.UUID    { return c.ID }
func (c *Collection) Ref() TargetRef         { return CollectionRef(c.ID) }
