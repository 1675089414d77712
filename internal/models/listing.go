package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing statuses.
const (
	ListingStatusIncomplete     = "incomplete"
	ListingStatusAwaitingReview = "awaiting-review"
	ListingStatusApproved       = "approved"
	ListingStatusDisabled       = "disabled"
	ListingStatusDeleted        = "deleted"
)

// Promotion tiers. High-profile tiers feed the held-action gate.
const (
	PromotionNone        = ""
	PromotionRecommended = "recommended"
	PromotionSpotlight   = "spotlight"
)

// Listing is a marketplace item with versioned content.
type Listing struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Slug             string         `gorm:"not null;size:255;uniqueIndex" json:"slug"`
	Name             string         `gorm:"not null;size:255" json:"name"`
	Status           string         `gorm:"not null;default:'incomplete';size:50;index" json:"status"`
	PromotionTier    string         `gorm:"size:50" json:"promotion_tier,omitempty"`
	CurrentVersionID *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`
	Authors          []Account      `gorm:"many2many:listing_authors" json:"-"`
	Versions         []ListingVersion `gorm:"foreignKey:ListingID" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Listing) TargetKind() TargetKind { return TargetListing }
func (l *Listing) TargetID() uuid.UUID    { return l.ID }
func (l *Listing) Ref() TargetRef         { return ListingRef(l.ID) }

// HighProfile reports whether the listing sits in a promoted tier while
// publicly approved.
func (l *Listing) HighProfile() bool {
	return l.PromotionTier != PromotionNone && l.Status == ListingStatusApproved
}

func (l *Listing) CurrentVersion() *ListingVersion {
	if l.CurrentVersionID == nil {
		return nil
	}
	for i := range l.Versions {
		if l.Versions[i].ID == *l.CurrentVersionID {
			return &l.Versions[i]
		}
	}
	return nil
}

// ListingVersion is one uploaded revision of a listing.
type ListingVersion struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListingID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"listing_id"`
	Version            string     `gorm:"not null;size:100" json:"version"`
	HumanReviewedAt    *time.Time `gorm:"index" json:"human_reviewed_at,omitempty"`
	PendingRejectionAt *time.Time `json:"pending_rejection_at,omitempty"`
	Files              []ListingFile `gorm:"foreignKey:VersionID" json:"-"`
	ReviewFlags        []VersionReviewFlag `gorm:"foreignKey:VersionID" json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HumanReviewedSince reports whether a reviewer assessed this version after t.
func (v *ListingVersion) HumanReviewedSince(t time.Time) bool {
	return v.HumanReviewedAt != nil && v.HumanReviewedAt.After(t)
}

// File statuses.
const (
	FileStatusApproved = "approved"
	FileStatusDisabled = "disabled"
)

// ListingFile keeps its pre-moderation status so a later approval can
// restore it.
type ListingFile struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VersionID      uuid.UUID `gorm:"type:uuid;not null;index" json:"version_id"`
	Filename       string    `gorm:"not null;size:255" json:"filename"`
	Status         string    `gorm:"not null;default:'approved';size:50" json:"status"`
	OriginalStatus string    `gorm:"size:50" json:"original_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
