package services

import (
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"gorm.io/gorm"
)

// LoadTarget resolves a target reference into its model, including the
// associations the held-action gate predicates need. Soft-deleted targets
// are still loadable: the engine has to reinstate them.
func LoadTarget(db *gorm.DB, ref models.TargetRef) (models.Target, error) {
	kind, ok := ref.Kind()
	if !ok {
		return nil, fmt.Errorf("%w: target reference must have exactly one variant", ErrConfig)
	}
	switch kind {
	case models.TargetListing:
		var l models.Listing
		if err := db.Unscoped().Preload("Versions").First(&l, "id = ?", ref.ID()).Error; err != nil {
			return nil, fmt.Errorf("%w: listing %s", ErrTargetNotFound, ref.ID())
		}
		return &l, nil
	case models.TargetAccount:
		var a models.Account
		if err := db.Unscoped().First(&a, "id = ?", ref.ID()).Error; err != nil {
			return nil, fmt.Errorf("%w: account %s", ErrTargetNotFound, ref.ID())
		}
		return &a, nil
	case models.TargetRating:
		var r models.Rating
		if err := db.Unscoped().Preload("Listing").First(&r, "id = ?", ref.ID()).Error; err != nil {
			return nil, fmt.Errorf("%w: rating %s", ErrTargetNotFound, ref.ID())
		}
		return &r, nil
	case models.TargetCollection:
		var c models.Collection
		if err := db.Unscoped().Preload("Author").First(&c, "id = ?", ref.ID()).Error; err != nil {
			return nil, fmt.Errorf("%w: collection %s", ErrTargetNotFound, ref.ID())
		}
		return &c, nil
	}
	return nil, fmt.Errorf("%w: unknown target kind %s", ErrConfig, kind)
}

// TargetName renders a human-readable name for notifications.
func TargetName(t models.Target) string {
	switch target := t.(type) {
	case *models.Listing:
		return target.Name
	case *models.Account:
		if target.DisplayName != "" {
			return target.DisplayName
		}
		return target.Email
	case *models.Rating:
		return "a review"
	case *models.Collection:
		return target.Name
	}
	return "content"
}

// TerminallyRemoved reports whether the target is already in its removed
// end-state: deleted, banned or disabled.
func TerminallyRemoved(t models.Target) bool {
	switch target := t.(type) {
	case *models.Listing:
		return target.DeletedAt.Valid ||
			target.Status == models.ListingStatusDisabled ||
			target.Status == models.ListingStatusDeleted
	case *models.Account:
		return target.DeletedAt.Valid || target.Banned()
	case *models.Rating:
		return target.DeletedAt.Valid
	case *models.Collection:
		return target.DeletedAt.Valid
	}
	return false
}
