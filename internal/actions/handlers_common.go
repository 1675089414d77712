package actions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newLog(d *models.Decision, action string, details map[string]interface{}) *models.ActivityLog {
	entry := &models.ActivityLog{
		ID:         uuid.New(),
		TargetRef:  d.TargetRef,
		Action:     action,
		DecisionID: &d.ID,
		ActorID:    d.ReviewerID,
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(b)
		}
	}
	return entry
}

func versionIDsSubquery(tx *gorm.DB, listingID uuid.UUID) *gorm.DB {
	return tx.Model(&models.ListingVersion{}).Select("id").Where("listing_id = ?", listingID)
}

// disableListing flips the listing off and disables its files, preserving
// each file's prior status so a later approval can restore it.
func disableListing(tx *gorm.DB, l *models.Listing) error {
	if l.Status != models.ListingStatusDisabled {
		if err := tx.Model(l).Update("status", models.ListingStatusDisabled).Error; err != nil {
			return err
		}
	}
	return tx.Model(&models.ListingFile{}).
		Where("version_id IN (?)", versionIDsSubquery(tx, l.ID)).
		Where("status <> ?", models.FileStatusDisabled).
		Updates(map[string]interface{}{
			"original_status": gorm.Expr("status"),
			"status":          models.FileStatusDisabled,
		}).Error
}

// reinstateListing restores a disabled listing and its files to their
// pre-moderation statuses.
func reinstateListing(tx *gorm.DB, l *models.Listing) error {
	if l.Status == models.ListingStatusDisabled {
		if err := tx.Model(l).Update("status", models.ListingStatusApproved).Error; err != nil {
			return err
		}
	}
	return tx.Model(&models.ListingFile{}).
		Where("version_id IN (?)", versionIDsSubquery(tx, l.ID)).
		Where("original_status <> ''").
		Updates(map[string]interface{}{
			"status":          gorm.Expr("original_status"),
			"original_status": "",
		}).Error
}

func authoredListingIDs(tx *gorm.DB, accountID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Table("listing_authors").Where("account_id = ?", accountID).
		Pluck("listing_id", &ids).Error
	return ids, err
}

// reinstateAccount lifts a ban and restores the account's content.
func reinstateAccount(tx *gorm.DB, a *models.Account) error {
	if a.Banned() {
		if err := tx.Model(a).Update("banned_at", nil).Error; err != nil {
			return err
		}
	}
	ids, err := authoredListingIDs(tx, a.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		var l models.Listing
		if err := tx.First(&l, "id = ?", id).Error; err != nil {
			continue
		}
		if err := reinstateListing(tx, &l); err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Model(&models.Rating{}).
		Where("author_id = ? AND deleted_at IS NOT NULL", a.ID).
		Update("deleted_at", nil).Error; err != nil {
		return err
	}
	return tx.Unscoped().Model(&models.Collection{}).
		Where("author_id = ? AND deleted_at IS NOT NULL", a.ID).
		Update("deleted_at", nil).Error
}

// reinstateTarget restores whichever target type the decision points at.
// Used by the approve, override-approve and appeal-approve handlers.
func reinstateTarget(tx *gorm.DB, t models.Target) error {
	switch target := t.(type) {
	case *models.Listing:
		return reinstateListing(tx, target)
	case *models.Account:
		return reinstateAccount(tx, target)
	case *models.Rating:
		return tx.Unscoped().Model(target).Update("deleted_at", nil).Error
	case *models.Collection:
		return tx.Unscoped().Model(target).Update("deleted_at", nil).Error
	}
	return fmt.Errorf("%w: %T", ErrInvalidTarget, t)
}

// targetVersions resolves the versions a rejection applies to: the metadata
// set when present, otherwise the listing's current version.
func targetVersions(tx *gorm.DB, d *models.Decision, l *models.Listing) ([]models.ListingVersion, error) {
	ids := d.Meta().VersionIDs
	if len(ids) == 0 && l.CurrentVersionID != nil {
		ids = []uuid.UUID{*l.CurrentVersionID}
	}
	var versions []models.ListingVersion
	if len(ids) == 0 {
		return versions, nil
	}
	err := tx.Where("listing_id = ? AND id IN ?", l.ID, ids).Find(&versions).Error
	return versions, err
}

func accountOwners(db *gorm.DB, id uuid.UUID) ([]models.Account, error) {
	var a models.Account
	if err := db.Unscoped().First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return []models.Account{a}, nil
}

func listingOwners(db *gorm.DB, l *models.Listing) ([]models.Account, error) {
	var authors []models.Account
	err := db.Model(l).Association("Authors").Find(&authors)
	return authors, err
}

func nowPtr() *time.Time {
	t := time.Now().UTC()
	return &t
}
