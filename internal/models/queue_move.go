package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueMove is an append-only audit row recording a case's movement between
// external queues. Moves are never updated or deleted.
type QueueMove struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID uuid.UUID `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case     `gorm:"foreignKey:CaseID" json:"-"`

	Queue string `gorm:"not null;size:100" json:"queue"`
	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}
