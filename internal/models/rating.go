package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is a user review on a listing. A rating with ReplyToID set is a
// developer reply rather than a standalone review.
type Rating struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListingID uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Score     int            `json:"score"`
	Body      string         `gorm:"type:text" json:"body"`
	ReplyToID *uuid.UUID     `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	Author    Account        `gorm:"foreignKey:AuthorID" json:"-"`
	Listing   Listing        `gorm:"foreignKey:ListingID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Rating) TargetKind() TargetKind { return TargetRating }
func (r *Rating) TargetID() uuid.UUID    { return r.ID }
func (r *Rating) Ref() TargetRef         { return RatingRef(r.ID) }

func (r *Rating) IsDeveloperReply() bool { return r.ReplyToID != nil }
