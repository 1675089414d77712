package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validReasons = map[string]bool{
	models.ReasonHatefulViolentDeceptive: true,
	models.ReasonIllegal:                 true,
	models.ReasonPolicyViolation:         true,
	models.ReasonDoesNotWork:             true,
	models.ReasonFeedbackSpam:            true,
	models.ReasonSomethingElse:           true,
}

// ReportService handles abuse-report intake: validation, case attachment,
// auto-resolution of already-assessed targets, and escalation of the rest.
type ReportService struct {
	db         *gorm.DB
	cases      *CaseService
	decisions  *DecisionService
	notifier   *NotifyService
	dispatcher tasks.Dispatcher
}

func NewReportService(db *gorm.DB, cases *CaseService, decisions *DecisionService,
	notifier *NotifyService, dispatcher tasks.Dispatcher) *ReportService {
	return &ReportService{
		db:         db,
		cases:      cases,
		decisions:  decisions,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

type CreateReportInput struct {
	Target             models.TargetRef
	ReporterID         *uuid.UUID
	ReporterEmail      string
	Reason             string
	IllegalCategory    string
	IllegalSubcategory string
	Location           string
	Message            string
	ListingVersionID   *uuid.UUID
}

// CreateReport validates and persists a report, attaches it to the target's
// open case, and either auto-resolves it or escalates the case for human
// review.
func (s *ReportService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if !in.Target.Valid() {
		return nil, fmt.Errorf("%w: target reference must have exactly one variant", ErrConfig)
	}
	if !validReasons[in.Reason] {
		return nil, fmt.Errorf("%w: unknown report reason %q", ErrConfig, in.Reason)
	}
	if in.ReporterID == nil && in.ReporterEmail == "" {
		return nil, fmt.Errorf("%w: report needs an authenticated reporter or an email", ErrConfig)
	}
	if in.Reason == models.ReasonIllegal && in.IllegalCategory == "" {
		return nil, fmt.Errorf("%w: illegal-content reports need a category", ErrConfig)
	}

	target, err := LoadTarget(s.db, in.Target)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.GetOrCreateForTarget(in.Target)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		ID:                 uuid.New(),
		TargetRef:          in.Target,
		ReporterID:         in.ReporterID,
		ReporterEmail:      in.ReporterEmail,
		Reason:             in.Reason,
		IllegalCategory:    in.IllegalCategory,
		IllegalSubcategory: in.IllegalSubcategory,
		Location:           in.Location,
		Message:            in.Message,
		ListingVersionID:   in.ListingVersionID,
		CaseID:             &c.ID,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}

	if s.ShouldAutoResolve(&report, target) {
		if err := s.autoResolve(ctx, &report, c, target); err != nil {
			// The report itself is saved; a failed auto-resolution just
			// leaves the case open for a human.
			slog.Error("auto-resolution failed, leaving case open",
				"report_id", report.ID, "case_id", c.ID, "error", err)
			return &report, s.escalate(ctx, c)
		}
		return &report, nil
	}

	return &report, s.escalate(ctx, c)
}

// ShouldAutoResolve reports whether the report needs no human attention:
// the target is already in its removed end-state, or the version the
// reporter saw was human-reviewed after the report came in. Reasons with
// legal weight always escalate.
func (s *ReportService) ShouldAutoResolve(report *models.Report, target models.Target) bool {
	if models.LegalEscalationReasons[report.Reason] {
		return false
	}
	if TerminallyRemoved(target) {
		return true
	}
	listing, ok := target.(*models.Listing)
	if !ok {
		return false
	}
	version := s.reportedVersion(report, listing)
	return version != nil && version.HumanReviewedSince(report.CreatedAt)
}

// reportedVersion is the version the reporter pinned, falling back to the
// listing's current version.
func (s *ReportService) reportedVersion(report *models.Report, listing *models.Listing) *models.ListingVersion {
	if report.ListingVersionID != nil {
		for i := range listing.Versions {
			if listing.Versions[i].ID == *report.ListingVersionID {
				return &listing.Versions[i]
			}
		}
	}
	return listing.CurrentVersion()
}

// autoResolve closes the case with an automated no-action decision and tells
// the reporter the content was already assessed. Auto-resolved cases never
// reach the external case service.
func (s *ReportService) autoResolve(ctx context.Context, report *models.Report, c *models.Case, target models.Target) error {
	d, err := s.decisions.Record(ctx, RecordDecisionInput{
		Target: report.TargetRef,
		Action: models.ActionClosedNoAction,
		Notes:  "auto-resolved: content already assessed",
		CaseID: &c.ID,
	})
	if err != nil {
		return err
	}
	metrics.ReportsAutoResolved.Inc()
	s.notifier.NotifyAlreadyAssessed(report, target)
	slog.Info("report auto-resolved",
		"report_id", report.ID, "case_id", c.ID, "decision_id", d.ID)
	return nil
}

// escalate hands an open case to the external service for human review.
// Already-synced cases skip the round trip; new reports on them surface
// through the existing job.
func (s *ReportService) escalate(ctx context.Context, c *models.Case) error {
	if c.Synced() {
		return nil
	}
	return s.dispatcher.Dispatch(ctx, tasks.Task{
		Kind:   tasks.TaskSyncReport,
		CaseID: c.ID,
	})
}
