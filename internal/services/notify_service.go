package services

import (
	"log/slog"
	"time"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyService computes decision notification fan-out: reporter recipients
// from the case's reports, owner recipients from the handler, template
// choice from the decision context. Delivery itself is best-effort.
type NotifyService struct {
	db       *gorm.DB
	cases    *CaseService
	registry *actions.Registry
	sender   notify.Sender

	appealWindow   time.Duration
	appealURL      string
	operatorEmails []string
}

func NewNotifyService(db *gorm.DB, cases *CaseService, registry *actions.Registry,
	sender notify.Sender, appealWindowDays int, appealURL string, operatorEmails []string) *NotifyService {
	return &NotifyService{
		db:             db,
		cases:          cases,
		registry:       registry,
		sender:         sender,
		appealWindow:   time.Duration(appealWindowDays) * 24 * time.Hour,
		appealURL:      appealURL,
		operatorEmails: operatorEmails,
	}
}

// CanBeAppealed reports whether the given appellant may still appeal the
// decision: it must have been executed, the appeal window must be open, no
// override may have superseded it, and no open appeal may already exist for
// the same (decision, appellant) pair. report is nil for the target owner.
func (s *NotifyService) CanBeAppealed(d *models.Decision, report *models.Report) (bool, error) {
	if !d.Executed() {
		return false, nil
	}
	if time.Since(*d.ActionDate) > s.appealWindow {
		return false, nil
	}
	superseded, err := s.cases.Superseded(d)
	if err != nil || superseded {
		return false, err
	}
	open, err := s.openAppealExists(d.ID, report)
	if err != nil || open {
		return false, err
	}
	return true, nil
}

func (s *NotifyService) openAppealExists(decisionID uuid.UUID, report *models.Report) (bool, error) {
	q := s.db.Model(&models.Appeal{}).Where("decision_id = ?", decisionID)
	if report == nil {
		q = q.Where("report_id IS NULL")
	} else {
		q = q.Where("report_id = ?", report.ID)
	}
	// An appeal stays open until its case receives a decision.
	q = q.Where("case_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM decisions WHERE decisions.case_id = appeals.case_id)")
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SendNotifications fans a decision out to the reporters of its case and,
// when notifyOwners is set, to the target's owners.
func (s *NotifyService) SendNotifications(decisionID uuid.UUID, notifyOwners bool) error {
	var d models.Decision
	if err := s.db.Preload("Policies").Preload("Policies.Parent").
		First(&d, "id = ?", decisionID).Error; err != nil {
		return ErrDecisionNotFound
	}

	target, err := LoadTarget(s.db, d.TargetRef)
	if err != nil {
		return err
	}

	in, err := s.cases.ResolveInputFor(&d)
	if err != nil {
		return err
	}
	kind, err := actions.ResolveHandler(in)
	if err != nil {
		return err
	}
	handler, err := s.registry.Get(kind)
	if err != nil {
		return err
	}
	isAppeal := in.Appealed != nil

	vars := s.baseVars(&d, target)

	if d.CaseID != nil {
		var reports []models.Report
		if err := s.db.Preload("Reporter").Where("case_id = ?", *d.CaseID).Find(&reports).Error; err != nil {
			return err
		}
		tmpl := handler.ReporterTemplate()
		if isAppeal {
			tmpl = handler.ReporterAppealTemplate()
		}
		if tmpl != "" {
			for i := range reports {
				s.sendReporter(&d, &reports[i], tmpl, vars)
			}
		}
	}

	if notifyOwners {
		// Owners only get appeal-outcome wording for their own appeals; a
		// reporter's appeal resolves with the plain decision templates.
		ownerAppeal := isAppeal && !s.appealByReporter(&d)
		if tmpl := ownerTemplate(kind, &d, ownerAppeal); tmpl != "" {
			if err := s.sendOwners(&d, handler, target, tmpl, vars); err != nil {
				return err
			}
		}
	}
	return nil
}

// appealByReporter reports whether the appeal adjudicated under this
// decision's case was filed by a reporter rather than the target's owner.
func (s *NotifyService) appealByReporter(d *models.Decision) bool {
	if d.CaseID == nil {
		return false
	}
	var appeals []models.Appeal
	if err := s.db.Where("case_id = ?", *d.CaseID).Limit(1).
		Find(&appeals).Error; err != nil || len(appeals) == 0 {
		return false
	}
	return appeals[0].ByReporter()
}

func (s *NotifyService) baseVars(d *models.Decision, target models.Target) notify.Vars {
	values := map[string]string{"target": TargetName(target)}
	policies := make([]string, 0, len(d.Policies))
	for i := range d.Policies {
		line := d.Policies[i].FullName()
		if text := d.Policies[i].RenderText(values); text != "" {
			line += ": " + text
		}
		policies = append(policies, line)
	}
	vars := notify.Vars{
		TargetName: TargetName(target),
		TargetKind: string(target.TargetKind()),
		Action:     string(d.Action),
		Policies:   policies,
		Notes:      d.Notes,
		AppealURL:  s.appealURL,
	}
	if delayed := d.Meta().DelayedUntil; delayed != nil {
		vars.DelayedUntil = delayed.Format("2006-01-02")
	}
	return vars
}

func (s *NotifyService) sendReporter(d *models.Decision, report *models.Report, tmpl string, vars notify.Vars) {
	email := report.Email()
	if email == "" {
		return
	}
	canAppeal, err := s.CanBeAppealed(d, report)
	if err != nil {
		slog.Error("appeal eligibility check failed", "decision_id", d.ID, "error", err)
	}
	vars.CanAppeal = canAppeal
	s.deliver(tmpl, vars, []string{email})
}

func (s *NotifyService) sendOwners(d *models.Decision, handler actions.Handler,
	target models.Target, tmpl string, vars notify.Vars) error {
	owners, err := handler.Owners(s.db, target)
	if err != nil {
		return err
	}
	recipients := make([]string, 0, len(owners))
	for i := range owners {
		if owners[i].Email != "" {
			recipients = append(recipients, owners[i].Email)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	canAppeal, err := s.CanBeAppealed(d, nil)
	if err != nil {
		return err
	}
	vars.CanAppeal = canAppeal
	s.deliver(tmpl, vars, recipients)
	return nil
}

// NotifyHeld alerts operators that a decision needs second-level approval.
func (s *NotifyService) NotifyHeld(d *models.Decision, target models.Target) error {
	if len(s.operatorEmails) == 0 {
		slog.Warn("held decision has no operators to notify", "decision_id", d.ID)
		return nil
	}
	vars := s.baseVars(d, target)
	s.deliver(notify.TmplOperatorHeld, vars, s.operatorEmails)
	return nil
}

// NotifyAlreadyAssessed tells a single reporter their report was
// auto-resolved because the content had already been reviewed.
func (s *NotifyService) NotifyAlreadyAssessed(report *models.Report, target models.Target) {
	email := report.Email()
	if email == "" {
		return
	}
	vars := notify.Vars{
		TargetName: TargetName(target),
		TargetKind: string(target.TargetKind()),
	}
	s.deliver(notify.TmplReporterAlreadyAssessed, vars, []string{email})
}

func (s *NotifyService) deliver(tmpl string, vars notify.Vars, recipients []string) {
	subject, body, err := notify.Render(tmpl, vars)
	if err != nil {
		slog.Error("notification render failed", "template", tmpl, "error", err)
		return
	}
	if err := s.sender.Send(subject, body, recipients); err != nil {
		// Best-effort: delivery retry is the sender's concern.
		slog.Error("notification send failed", "template", tmpl, "error", err)
		return
	}
	metrics.NotificationsSent.WithLabelValues(tmpl).Inc()
}

// ownerTemplate picks the owner-facing template for a decision, or "" when
// owners are not notified for this outcome.
func ownerTemplate(kind actions.HandlerKind, d *models.Decision, isAppeal bool) string {
	switch kind {
	case actions.KindOverrideApprove:
		return notify.TmplOwnerOverrideApproved
	case actions.KindTargetAppealApprove:
		return notify.TmplOwnerAppealApproved
	case actions.KindTargetAppealAffirm:
		return notify.TmplOwnerAppealDenied
	}
	switch {
	case isAppeal && d.Action.Approval():
		return notify.TmplOwnerAppealApproved
	case isAppeal && d.Action.Removal():
		return notify.TmplOwnerAppealDenied
	case d.Action == models.ActionRejectVersionsDelayed:
		return notify.TmplOwnerDelayedRejection
	case d.Action.Removal():
		return notify.TmplOwnerTakedown
	}
	return ""
}
