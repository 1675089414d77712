package dto

import (
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// TargetRequest names the reported or adjudicated content. Exactly one field
// must be set.
type TargetRequest struct {
	ListingID    *uuid.UUID `json:"listing_id,omitempty"`
	AccountID    *uuid.UUID `json:"account_id,omitempty"`
	RatingID     *uuid.UUID `json:"rating_id,omitempty"`
	CollectionID *uuid.UUID `json:"collection_id,omitempty"`
}

func (t TargetRequest) Ref() models.TargetRef {
	return models.TargetRef{
		ListingID:    t.ListingID,
		AccountID:    t.AccountID,
		RatingID:     t.RatingID,
		CollectionID: t.CollectionID,
	}
}
