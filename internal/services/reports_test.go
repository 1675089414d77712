package services

import (
	"testing"
	"time"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestShouldAutoResolve(t *testing.T) {
	s := &ReportService{}
	now := time.Now()
	versionID := uuid.New()

	reviewedListing := func(reviewedAt time.Time) *models.Listing {
		return &models.Listing{
			Status:           models.ListingStatusApproved,
			CurrentVersionID: &versionID,
			Versions: []models.ListingVersion{
				{ID: versionID, HumanReviewedAt: timePtr(reviewedAt)},
			},
		}
	}

	t.Run("terminally removed target", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonPolicyViolation, CreatedAt: now}
		disabled := &models.Listing{Status: models.ListingStatusDisabled}
		assert.True(t, s.ShouldAutoResolve(report, disabled))

		banned := &models.Account{BannedAt: timePtr(now)}
		assert.True(t, s.ShouldAutoResolve(report, banned))

		deletedRating := &models.Rating{DeletedAt: gorm.DeletedAt{Time: now, Valid: true}}
		assert.True(t, s.ShouldAutoResolve(report, deletedRating))
	})

	t.Run("reviewed after the report", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonPolicyViolation, CreatedAt: now}
		assert.True(t, s.ShouldAutoResolve(report, reviewedListing(now.Add(time.Hour))))
	})

	t.Run("reviewed before the report", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonPolicyViolation, CreatedAt: now}
		assert.False(t, s.ShouldAutoResolve(report, reviewedListing(now.Add(-time.Hour))))
	})

	t.Run("never reviewed", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonPolicyViolation, CreatedAt: now}
		l := &models.Listing{Status: models.ListingStatusApproved, CurrentVersionID: &versionID,
			Versions: []models.ListingVersion{{ID: versionID}}}
		assert.False(t, s.ShouldAutoResolve(report, l))
	})

	t.Run("legal reasons always escalate", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonIllegal, CreatedAt: now}
		assert.False(t, s.ShouldAutoResolve(report, reviewedListing(now.Add(time.Hour))))

		disabled := &models.Listing{Status: models.ListingStatusDisabled}
		assert.False(t, s.ShouldAutoResolve(report, disabled))
	})

	t.Run("pinned version beats current", func(t *testing.T) {
		pinnedID := uuid.New()
		l := reviewedListing(now.Add(time.Hour))
		l.Versions = append(l.Versions, models.ListingVersion{ID: pinnedID})
		report := &models.Report{
			Reason:           models.ReasonPolicyViolation,
			CreatedAt:        now,
			ListingVersionID: &pinnedID,
		}
		assert.False(t, s.ShouldAutoResolve(report, l), "pinned version was never reviewed")
	})

	t.Run("non-listing targets without removal escalate", func(t *testing.T) {
		report := &models.Report{Reason: models.ReasonPolicyViolation, CreatedAt: now}
		assert.False(t, s.ShouldAutoResolve(report, &models.Account{}))
	})
}

func TestTerminallyRemoved(t *testing.T) {
	assert.False(t, TerminallyRemoved(&models.Listing{Status: models.ListingStatusApproved}))
	assert.True(t, TerminallyRemoved(&models.Listing{Status: models.ListingStatusDeleted}))
	assert.False(t, TerminallyRemoved(&models.Account{}))
	assert.False(t, TerminallyRemoved(&models.Collection{}))
	assert.True(t, TerminallyRemoved(&models.Collection{
		DeletedAt: gorm.DeletedAt{Time: time.Now(), Valid: true},
	}))
}
