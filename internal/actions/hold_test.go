package actions

import (
	"testing"
	"time"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBanAccountHold(t *testing.T) {
	h := &BanAccountHandler{}
	now := time.Now()

	tests := []struct {
		name    string
		account models.Account
		hold    bool
	}{
		{"ordinary user", models.Account{Role: models.RoleUser}, false},
		{"reviewer", models.Account{Role: models.RoleReviewer}, true},
		{"admin", models.Account{Role: models.RoleAdmin}, true},
		{"platform", models.Account{Role: models.RolePlatform}, true},
		{"already banned admin", models.Account{Role: models.RoleAdmin, BannedAt: &now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hold, h.ShouldHold(nil, &tt.account))
		})
	}
}

func TestDisableListingHold(t *testing.T) {
	h := &DisableListingHandler{}

	tests := []struct {
		name    string
		listing models.Listing
		hold    bool
	}{
		{"plain approved", models.Listing{Status: models.ListingStatusApproved}, false},
		{"promoted approved", models.Listing{
			Status: models.ListingStatusApproved, PromotionTier: models.PromotionRecommended,
		}, true},
		{"spotlight approved", models.Listing{
			Status: models.ListingStatusApproved, PromotionTier: models.PromotionSpotlight,
		}, true},
		{"promoted but awaiting review", models.Listing{
			Status: models.ListingStatusAwaitingReview, PromotionTier: models.PromotionRecommended,
		}, false},
		{"promoted but already disabled", models.Listing{
			Status: models.ListingStatusDisabled, PromotionTier: models.PromotionRecommended,
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hold, h.ShouldHold(nil, &tt.listing))
		})
	}
}

func TestDeleteRatingHold(t *testing.T) {
	h := &DeleteRatingHandler{}
	listingID := uuid.New()
	promoted := models.Listing{
		ID: listingID, Status: models.ListingStatusApproved,
		PromotionTier: models.PromotionRecommended,
	}
	replyTo := uuid.New()

	reply := models.Rating{ListingID: listingID, ReplyToID: &replyTo, Listing: promoted}
	assert.True(t, h.ShouldHold(nil, &reply))

	plainRating := models.Rating{ListingID: listingID, Listing: promoted}
	assert.False(t, h.ShouldHold(nil, &plainRating), "only developer replies hold")

	unpromoted := promoted
	unpromoted.PromotionTier = models.PromotionNone
	replyOnPlain := models.Rating{ListingID: listingID, ReplyToID: &replyTo, Listing: unpromoted}
	assert.False(t, h.ShouldHold(nil, &replyOnPlain))

	deletedReply := reply
	deletedReply.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	assert.False(t, h.ShouldHold(nil, &deletedReply))
}

func TestDeleteCollectionHold(t *testing.T) {
	h := &DeleteCollectionHandler{}

	platformOwned := models.Collection{Author: models.Account{Role: models.RolePlatform}}
	assert.True(t, h.ShouldHold(nil, &platformOwned))

	userOwned := models.Collection{Author: models.Account{Role: models.RoleUser}}
	assert.False(t, h.ShouldHold(nil, &userOwned))

	deleted := platformOwned
	deleted.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	assert.False(t, h.ShouldHold(nil, &deleted))
}

func TestValidTarget(t *testing.T) {
	ban := &BanAccountHandler{}
	assert.True(t, ValidTarget(ban, &models.Account{}))
	assert.False(t, ValidTarget(ban, &models.Listing{}))

	approve := &ApproveHandler{}
	assert.True(t, ValidTarget(approve, &models.Listing{}))
	assert.True(t, ValidTarget(approve, &models.Collection{}))
}
