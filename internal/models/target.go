package models

import "github.com/google/uuid"

type TargetKind string

const (
	TargetListing    TargetKind = "listing"
	TargetAccount    TargetKind = "account"
	TargetRating     TargetKind = "rating"
	TargetCollection TargetKind = "collection"
)

// Target is implemented by the four moderatable content types.
type Target interface {
	TargetKind() TargetKind
	TargetID() uuid.UUID
	Ref() TargetRef
}

// TargetRef is a tagged union over the moderatable content types, embedded
// into Report, Case and Decision rows. Exactly one id must be set.
type TargetRef struct {
	ListingID    *uuid.UUID `gorm:"type:uuid;index" json:"listing_id,omitempty"`
	AccountID    *uuid.UUID `gorm:"type:uuid;index" json:"account_id,omitempty"`
	RatingID     *uuid.UUID `gorm:"type:uuid;index" json:"rating_id,omitempty"`
	CollectionID *uuid.UUID `gorm:"type:uuid;index" json:"collection_id,omitempty"`
}

func ListingRef(id uuid.UUID) TargetRef    { return TargetRef{ListingID: &id} }
func AccountRef(id uuid.UUID) TargetRef    { return TargetRef{AccountID: &id} }
func RatingRef(id uuid.UUID) TargetRef     { return TargetRef{RatingID: &id} }
func CollectionRef(id uuid.UUID) TargetRef { return TargetRef{CollectionID: &id} }

// Kind returns the populated variant. ok is false when the ref is empty or
// has more than one id set.
func (r TargetRef) Kind() (TargetKind, bool) {
	var kind TargetKind
	n := 0
	if r.ListingID != nil {
		kind, n = TargetListing, n+1
	}
	if r.AccountID != nil {
		kind, n = TargetAccount, n+1
	}
	if r.RatingID != nil {
		kind, n = TargetRating, n+1
	}
	if r.CollectionID != nil {
		kind, n = TargetCollection, n+1
	}
	return kind, n == 1
}

func (r TargetRef) Valid() bool {
	_, ok := r.Kind()
	return ok
}

func (r TargetRef) ID() uuid.UUID {
	switch {
	case r.ListingID != nil:
		return *r.ListingID
	case r.AccountID != nil:
		return *r.AccountID
	case r.RatingID != nil:
		return *r.RatingID
	case r.CollectionID != nil:
		return *r.CollectionID
	}
	return uuid.Nil
}

func (r TargetRef) Equal(o TargetRef) bool {
	k1, ok1 := r.Kind()
	k2, ok2 := o.Kind()
	return ok1 && ok2 && k1 == k2 && r.ID() == o.ID()
}
