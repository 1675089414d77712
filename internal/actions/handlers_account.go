package actions

import (
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"gorm.io/gorm"
)

// BanAccountHandler disables an account's login and cascades to its owned
// content: authored listings are disabled (restorably), ratings and
// collections are soft-deleted.
type BanAccountHandler struct{}

func (h *BanAccountHandler) Kind() HandlerKind { return KindBanAccount }

func (h *BanAccountHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetAccount}
}

// ShouldHold defers bans of staff or otherwise highly-permissioned accounts.
// An already-banned account never holds.
func (h *BanAccountHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	a, ok := t.(*models.Account)
	return ok && a.Elevated() && !a.Banned()
}

func (h *BanAccountHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	a, ok := t.(*models.Account)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	if !a.Banned() {
		if err := tx.Model(a).Update("banned_at", nowPtr()).Error; err != nil {
			return nil, err
		}
	}
	ids, err := authoredListingIDs(tx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		var l models.Listing
		if err := tx.First(&l, "id = ?", id).Error; err != nil {
			continue
		}
		if err := disableListing(tx, &l); err != nil {
			return nil, err
		}
	}
	if err := tx.Where("author_id = ?", a.ID).Delete(&models.Rating{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("author_id = ?", a.ID).Delete(&models.Collection{}).Error; err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityBanAccount, map[string]interface{}{
		"account":  a.ID,
		"listings": len(ids),
	}), nil
}

func (h *BanAccountHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return accountOwners(db, t.(*models.Account).ID)
}

func (h *BanAccountHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *BanAccountHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}

// DeleteRatingHandler soft-deletes a rating so it can be restored on appeal.
type DeleteRatingHandler struct{}

func (h *DeleteRatingHandler) Kind() HandlerKind { return KindDeleteRating }

func (h *DeleteRatingHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetRating}
}

// ShouldHold defers deleting developer replies on promoted listings; those
// are high-visibility and a wrong call is hard to walk back quietly.
func (h *DeleteRatingHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	r, ok := t.(*models.Rating)
	return ok && r.IsDeveloperReply() && r.Listing.HighProfile() && !r.DeletedAt.Valid
}

func (h *DeleteRatingHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	r, ok := t.(*models.Rating)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	if !r.DeletedAt.Valid {
		if err := tx.Delete(r).Error; err != nil {
			return nil, err
		}
	}
	return newLog(d, models.ActivityDeleteRating, map[string]interface{}{
		"rating": r.ID,
	}), nil
}

func (h *DeleteRatingHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return accountOwners(db, t.(*models.Rating).AuthorID)
}

func (h *DeleteRatingHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *DeleteRatingHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}

// DeleteCollectionHandler soft-deletes a collection.
type DeleteCollectionHandler struct{}

func (h *DeleteCollectionHandler) Kind() HandlerKind { return KindDeleteCollection }

func (h *DeleteCollectionHandler) ValidTargets() []models.TargetKind {
	return []models.TargetKind{models.TargetCollection}
}

// ShouldHold defers deleting collections curated by the platform itself.
func (h *DeleteCollectionHandler) ShouldHold(_ *models.Decision, t models.Target) bool {
	c, ok := t.(*models.Collection)
	return ok && c.Author.Role == models.RolePlatform && !c.DeletedAt.Valid
}

func (h *DeleteCollectionHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	c, ok := t.(*models.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
	}
	if !c.DeletedAt.Valid {
		if err := tx.Delete(c).Error; err != nil {
			return nil, err
		}
	}
	return newLog(d, models.ActivityDeleteCollection, map[string]interface{}{
		"collection": c.Slug,
	}), nil
}

func (h *DeleteCollectionHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return accountOwners(db, t.(*models.Collection).AuthorID)
}

func (h *DeleteCollectionHandler) ReporterTemplate() string { return notify.TmplReporterTakedown }
func (h *DeleteCollectionHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}
