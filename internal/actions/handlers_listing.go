package actions

import (
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DisableListingHandler takes a listing off the marketplace entirely.
type DisableListingHandler struct{}

func (h *DisableListingHandler) Kind() HandlerKind { return KindDisableListing }

func (h *DisableListingHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetListing}
}

// ShouldHold defers disables of promoted, currently-approved listings for
// second-level approval. An already-disabled listing never holds.
func (h *DisableListingHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	l, ok := t.(*models.Listing)
	return ok && l.HighProfile() && l.Status != models.ListingStatusDisabled
}

func (h *DisableListingHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	l, ok := t.(*models.Listing)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	if err := disableListing(tx, l); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityDisableListing, map[string]interface{}{
		"listing": l.Slug,
	}), nil
}

func (h *DisableListingHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return listingOwners(db, t.(*models.Listing))
}

func (h *DisableListingHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *DisableListingHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}

// RejectVersionsHandler disables the files of specific listing versions.
type RejectVersionsHandler struct{}

func (h *RejectVersionsHandler) Kind() HandlerKind { return KindRejectVersions }

func (h *RejectVersionsHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetListing}
}

func (h *RejectVersionsHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	l, ok := t.(*models.Listing)
	return ok && l.HighProfile()
}

func (h *RejectVersionsHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	l, ok := t.(*models.Listing)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	versions, err := targetVersions(tx, d, l)
	if err != nil {
		return nil, err
	}
	rejected := make([]uuid.UUID, 0, len(versions))
	currentRejected := false
	for i := range versions {
		v := &versions[i]
		if err := tx.Model(&models.ListingFile{}).
			Where("version_id = ? AND status <> ?", v.ID, models.FileStatusDisabled).
			Updates(map[string]interface{}{
				"original_status": gorm.Expr("status"),
				"status":          models.FileStatusDisabled,
			}).Error; err != nil {
			return nil, err
		}
		if err := tx.Model(v).Updates(map[string]interface{}{
			"pending_rejection_at": nil,
			"human_reviewed_at":    nowPtr(),
		}).Error; err != nil {
			return nil, err
		}
		rejected = append(rejected, v.ID)
		if l.CurrentVersionID != nil && *l.CurrentVersionID == v.ID {
			currentRejected = true
		}
	}
	// Rejecting the listing's only public version takes it off the shelf.
	if currentRejected && l.Status == models.ListingStatusApproved {
		if err := tx.Model(l).Update("status", models.ListingStatusAwaitingReview).Error; err != nil {
			return nil, err
		}
	}
	return newLog(d, models.ActivityRejectVersions, map[string]interface{}{
		"listing":  l.Slug,
		"versions": rejected,
	}), nil
}

func (h *RejectVersionsHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return listingOwners(db, t.(*models.Listing))
}

func (h *RejectVersionsHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *RejectVersionsHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}

// RejectVersionsDelayedHandler schedules a future disable instead of acting
// immediately, and flags the versions for a second look.
type RejectVersionsDelayedHandler struct{}

func (h *RejectVersionsDelayedHandler) Kind() HandlerKind { return KindRejectVersionsDelayed }

func (h *RejectVersionsDelayedHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetListing}
}

func (h *RejectVersionsDelayedHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	l, ok := t.(*models.Listing)
	return ok && l.HighProfile()
}

func (h *RejectVersionsDelayedHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	l, ok := t.(*models.Listing)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	deadline := d.Meta().DelayedUntil
	if deadline == nil {
		return nil, fmt.Errorf("delayed rejection without a deadline for decision %s", d.ID)
	}
	versions, err := targetVersions(tx, d, l)
	if err != nil {
		return nil, err
	}
	flagged := make([]uuid.UUID, 0, len(versions))
	for i := range versions {
		v := &versions[i]
		if err := tx.Model(v).Update("pending_rejection_at", deadline).Error; err != nil {
			return nil, err
		}
		if err := AddReviewFlag(tx, v.ID, models.ReviewFlagSecondLook); err != nil {
			return nil, err
		}
		flagged = append(flagged, v.ID)
	}
	return newLog(d, models.ActivityDelayedRejection, map[string]interface{}{
		"listing":  l.Slug,
		"versions": flagged,
		"deadline": deadline,
	}), nil
}

func (h *RejectVersionsDelayedHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return listingOwners(db, t.(*models.Listing))
}

func (h *RejectVersionsDelayedHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *RejectVersionsDelayedHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}

// ApproveVersionHandler stamps specific versions as human reviewed and
// restores any files a prior rejection disabled.
type ApproveVersionHandler struct{}

func (h *ApproveVersionHandler) Kind() HandlerKind { return KindApproveVersion }

func (h *ApproveVersionHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetListing}
}

func (h *ApproveVersionHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *ApproveVersionHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	l, ok := t.(*models.Listing)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	versions, err := targetVersions(tx, d, l)
	if err != nil {
		return nil, err
	}
	approved := make([]uuid.UUID, 0, len(versions))
	for i := range versions {
		v := &versions[i]
		if err := tx.Model(&models.ListingFile{}).
			Where("version_id = ? AND original_status <> ''", v.ID).
			Updates(map[string]interface{}{
				"status":          gorm.Expr("original_status"),
				"original_status": "",
			}).Error; err != nil {
			return nil, err
		}
		if err := tx.Model(v).Updates(map[string]interface{}{
			"pending_rejection_at": nil,
			"human_reviewed_at":    nowPtr(),
		}).Error; err != nil {
			return nil, err
		}
		approved = append(approved, v.ID)
	}
	return newLog(d, models.ActivityApprove, map[string]interface{}{
		"listing":  l.Slug,
		"versions": approved,
	}), nil
}

func (h *ApproveVersionHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return listingOwners(db, t.(*models.Listing))
}

func (h *ApproveVersionHandler) ReporterTemplate() string { return notify.TmplReporterNoAction }
func (h *ApproveVersionHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealDenied
}

// AddReviewFlag raises a needs-human-review flag unless an equivalent one is
// already active.
func AddReviewFlag(tx *gorm.DB, versionID uuid.UUID, reason string) error {
	var count int64
	if err := tx.Model(&models.VersionReviewFlag{}).
		Where("version_id = ? AND reason = ? AND cleared_at IS NULL", versionID, reason).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&models.VersionReviewFlag{
		ID:        uuid.New(),
		VersionID: versionID,
		Reason:    reason,
	}).Error
}
