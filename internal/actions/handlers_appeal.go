package actions

import (
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"gorm.io/gorm"
)

// OverrideApproveHandler reinstates a target after an out-of-band correction
// of an executed removal. Same mutation as an approval, distinct
// notification.
type OverrideApproveHandler struct{}

func (h *OverrideApproveHandler) Kind() HandlerKind                 { return KindOverrideApprove }
func (h *OverrideApproveHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *OverrideApproveHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *OverrideApproveHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	if err := reinstateTarget(tx, t); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityApprove, map[string]interface{}{
		"override": true,
	}), nil
}

func (h *OverrideApproveHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *OverrideApproveHandler) ReporterTemplate() string { return notify.TmplReporterNoAction }
func (h *OverrideApproveHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealApproved
}

// TargetAppealApproveHandler reinstates a target whose removal was
// successfully appealed by its owner.
type TargetAppealApproveHandler struct{}

func (h *TargetAppealApproveHandler) Kind() HandlerKind                 { return KindTargetAppealApprove }
func (h *TargetAppealApproveHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *TargetAppealApproveHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *TargetAppealApproveHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	if err := reinstateTarget(tx, t); err != nil {
		return nil, err
	}
	return newLog(d, models.ActivityApprove, map[string]interface{}{
		"appeal": true,
	}), nil
}

func (h *TargetAppealApproveHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *TargetAppealApproveHandler) ReporterTemplate() string {
	return notify.TmplReporterAppealApproved
}
func (h *TargetAppealApproveHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealApproved
}

// TargetAppealAffirmHandler records that an appeal was denied: the original
// removal stands, nothing mutates, the appellant is told.
type TargetAppealAffirmHandler struct{}

func (h *TargetAppealAffirmHandler) Kind() HandlerKind                 { return KindTargetAppealAffirm }
func (h *TargetAppealAffirmHandler) ValidTargets() []models.TargetKind { return allTargets }

func (h *TargetAppealAffirmHandler) ShouldHold(*models.Decision, models.Target) bool { return false }

func (h *TargetAppealAffirmHandler) Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error) {
	return newLog(d, models.ActivityResolvedNoAction, map[string]interface{}{
		"appeal_denied": true,
	}), nil
}

func (h *TargetAppealAffirmHandler) Owners(db *gorm.DB, t models.Target) ([]models.Account, error) {
	return ownersFor(db, t)
}

func (h *TargetAppealAffirmHandler) ReporterTemplate() string {
	return notify.TmplReporterAppealTakedown
}
func (h *TargetAppealAffirmHandler) ReporterAppealTemplate() string {
	return notify.TmplReporterAppealTakedown
}
