package actions

import (
	"context"
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"gorm.io/gorm"
)

// ownersFor resolves owner accounts for any target kind.
func ownersFor(db *gorm.DB, t models.Target) ([]models.Account, error) {
	switch target := t.(type) {
	case *models.Listing:
		return listingOwners(db, target)
	case *models.Account:
		return accountOwners(db, target.ID)
	case *models.Rating:
		return accountOwners(db, target.AuthorID)
	case *models.Collection:
		return accountOwners(db, target.AuthorID)
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, t)
}

// ApproveHandler resolves a case in the target's favor. When the target had
// previously been removed the approval reinstates it; otherwise nothing
// changes.
type ApproveHandler struct{}

func (h *ApproveHandler) Kind() HandlerKind                 { return KindApprove }
func (h *ApproveHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *ApproveHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *ApproveHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	if err := reinstateTarget(tx, t); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityApprove, nil), nil
}

func (h *ApproveHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *ApproveHandler) ReporterTemplate() string { return notify.TmplReporterNoAction }

// A reporter appeal landing on the base approve handler means the appealed
// decision was itself a non-removal: nothing was restored, the decision was
// confirmed.
func (h *ApproveHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealDenied
}

// IgnoreHandler dismisses a report without touching the target. Used for
// spam and junk reports.
type IgnoreHandler struct{}

func (h *IgnoreHandler) Kind() HandlerKind                 { return KindIgnore }
func (h *IgnoreHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *IgnoreHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *IgnoreHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	return newLog(d, models.ActivityResolvedNoAction, nil), nil
}

func (h *IgnoreHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *IgnoreHandler) ReporterTemplate() string       { return notify.TmplReporterNoAction }
func (h *IgnoreHandler) ReporterAppealTemplate() string { return notify.TmplReporterNoAction }

// ClosedNoActionHandler closes a case with no enforcement. It is the action
// behind auto-resolution of already-assessed reports.
type ClosedNoActionHandler struct{}

func (h *ClosedNoActionHandler) Kind() HandlerKind                 { return KindClosedNoAction }
func (h *ClosedNoActionHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *ClosedNoActionHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *ClosedNoActionHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	return newLog(d, models.ActivityResolvedNoAction, nil), nil
}

func (h *ClosedNoActionHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *ClosedNoActionHandler) ReporterTemplate() string {
	return notify.TmplReporterAlreadyAssessed
}
func (h *ClosedNoActionHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterNoAction
}

// ForwardLegalHandler hands the case to the legal team. No target mutation;
// the follow-up happens out of band via an async task.
type ForwardLegalHandler struct {
	dispatcher tasks.Dispatcher
}

func (h *ForwardLegalHandler) Kind() HandlerKind                 { return KindForwardLegal }
func (h *ForwardLegalHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *ForwardLegalHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *ForwardLegalHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	if err := h.dispatcher.Dispatch(context.Background(), tasks.Task{
		Kind:       tasks.TaskForwardLegal,
		DecisionID: d.ID,
	}); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityForwarded, map[string]interface{}{
		"destination": "legal",
	}), nil
}

func (h *ForwardLegalHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

// Forwarding is not a final resolution; reporters hear nothing yet.
func (h *ForwardLegalHandler) ReporterTemplate() string       { return "" }
func (h *ForwardLegalHandler) ReporterAppealTemplate() string { return "" }

// ForwardReviewersHandler requeues the case for the human review pool.
type ForwardReviewersHandler struct {
	dispatcher tasks.Dispatcher
}

func (h *ForwardReviewersHandler) Kind() HandlerKind                 { return KindForwardReviewers }
func (h *ForwardReviewersHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *ForwardReviewersHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *ForwardReviewersHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	if err := h.dispatcher.Dispatch(context.Background(), tasks.Task{
		Kind:       tasks.TaskEscalateReviewers,
		DecisionID: d.ID,
	}); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityForwarded, map[string]interface{}{
		"destination": "reviewers",
	}), nil
}

func (h *ForwardReviewersHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *ForwardReviewersHandler) ReporterTemplate() string       { return "" }
func (h *ForwardReviewersHandler) ReporterAppealTemplate() string { return "" }
