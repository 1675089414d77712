package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/cinder"
	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppealService validates appellants, opens (or reuses) the appeal case with
// the external service, and records the appeal.
type AppealService struct {
	db       *gorm.DB
	cases    *CaseService
	notifier *NotifyService
	client   *cinder.Client

	appealQueueSlug string
}

func NewAppealService(db *gorm.DB, cases *CaseService, notifier *NotifyService,
	client *cinder.Client, appealQueueSlug string) *AppealService {
	return &AppealService{
		db:              db,
		cases:           cases,
		notifier:        notifier,
		client:          client,
		appealQueueSlug: appealQueueSlug,
	}
}

type AppealInput struct {
	DecisionID uuid.UUID
	// Report identifies the appealing reporter; nil means the target owner
	// appeals.
	ReportID *uuid.UUID
	// ActorID is the authenticated appellant. May be nil only for reporter
	// appeals (anonymous reporters) and for account-ban appeals, where the
	// banned owner can no longer authenticate.
	ActorID    *uuid.UUID
	AsReporter bool
	Text       string
}

// Appeal files an appeal against a decision. Idempotent with respect to the
// external service: a decision only ever gets one appeal case, concurrent
// and repeated calls reuse it.
func (s *AppealService) Appeal(ctx context.Context, in AppealInput) (*models.Appeal, error) {
	var d models.Decision
	if err := s.db.First(&d, "id = ?", in.DecisionID).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecisionNotFound, in.DecisionID)
	}

	var report *models.Report
	if in.AsReporter {
		if in.ReportID == nil {
			return nil, fmt.Errorf("%w: reporter appeal requires the originating report", ErrConfig)
		}
		var r models.Report
		if err := s.db.Unscoped().Preload("Reporter").First(&r, "id = ?", *in.ReportID).Error; err != nil {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, *in.ReportID)
		}
		report = &r
	} else if in.ActorID == nil && d.Action != models.ActionBanAccount {
		// Banned owners are the one appellant that cannot authenticate.
		return nil, fmt.Errorf("%w: owner appeal requires an authenticated actor", ErrConfig)
	}

	// Repeat calls return the appellant's open appeal as-is. The eligibility
	// gate below would otherwise refuse the retry, because the first call's
	// appeal is exactly what makes the decision no longer appealable.
	existing, err := s.openAppeal(d.ID, in.ReportID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	eligible, err := s.notifier.CanBeAppealed(&d, report)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: decision %s can no longer be appealed", ErrConfig, d.ID)
	}

	appealCase, err := s.getOrCreateAppealCase(ctx, &d, in.Text)
	if err != nil {
		return nil, err
	}

	// A concurrent appeal may have been committed between the lookup above
	// and the case creation; re-check before inserting a duplicate.
	existing, err = s.openAppeal(d.ID, in.ReportID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	appeal := models.Appeal{
		ID:         uuid.New(),
		DecisionID: d.ID,
		ReportID:   in.ReportID,
		CaseID:     &appealCase.ID,
		Text:       in.Text,
	}
	if err := s.db.Create(&appeal).Error; err != nil {
		return nil, err
	}

	if err := s.propagateResolvability(&d, appealCase); err != nil {
		return nil, err
	}
	return &appeal, nil
}

// getOrCreateAppealCase reuses the decision's appeal case when one exists,
// otherwise opens a child case and registers it with the external service.
// The unique index on decisions.appeal_case_id serializes concurrent appeals.
func (s *AppealService) getOrCreateAppealCase(ctx context.Context, d *models.Decision, reasoning string) (*models.Case, error) {
	if d.AppealCaseID != nil {
		var c models.Case
		if err := s.db.First(&c, "id = ?", *d.AppealCaseID).Error; err != nil {
			return nil, fmt.Errorf("%w: appeal case %s", ErrCaseNotFound, *d.AppealCaseID)
		}
		return &c, nil
	}

	c := models.Case{ID: uuid.New(), TargetRef: d.TargetRef}

	if d.Synced() {
		externalID, err := s.client.CreateAppeal(ctx, cinder.AppealRequest{
			DecisionToAppealID: *d.CinderID,
			Reasoning:          reasoning,
			QueueSlug:          s.appealQueueSlug,
		})
		if err != nil {
			metrics.CinderCalls.WithLabelValues("create_appeal", "error").Inc()
			return nil, err
		}
		metrics.CinderCalls.WithLabelValues("create_appeal", "ok").Inc()
		c.CinderJobID = &externalID
	} else {
		// Local-only decisions (e.g. not yet synced) still get an appeal
		// case; it will reach the external service with the next sync.
		slog.Warn("opening appeal case for unsynced decision", "decision_id", d.ID)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return tx.Model(d).Update("appeal_case_id", c.ID).Error
	})
	if err != nil {
		return nil, err
	}
	d.AppealCaseID = &c.ID
	return &c, nil
}

func (s *AppealService) openAppeal(decisionID uuid.UUID, reportID *uuid.UUID) (*models.Appeal, error) {
	q := s.db.Where("decision_id = ?", decisionID)
	if reportID == nil {
		q = q.Where("report_id IS NULL")
	} else {
		q = q.Where("report_id = ?", *reportID)
	}
	q = q.Where("case_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM decisions WHERE decisions.case_id = appeals.case_id)")
	var appeals []models.Appeal
	if err := q.Limit(1).Find(&appeals).Error; err != nil {
		return nil, err
	}
	if len(appeals) == 0 {
		return nil, nil
	}
	return &appeals[0], nil
}

// propagateResolvability carries the appealed case's locally-resolvable flag
// onto the appeal case and escalates the target's current version.
func (s *AppealService) propagateResolvability(d *models.Decision, appealCase *models.Case) error {
	if d.CaseID == nil {
		return nil
	}
	var parent models.Case
	if err := s.db.First(&parent, "id = ?", *d.CaseID).Error; err != nil {
		return nil
	}
	if !parent.ResolvableLocally {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if !appealCase.ResolvableLocally {
			if err := tx.Model(appealCase).Update("resolvable_locally", true).Error; err != nil {
				return err
			}
		}
		if appealCase.ListingID == nil {
			return nil
		}
		var l models.Listing
		if err := tx.Unscoped().First(&l, "id = ?", *appealCase.ListingID).Error; err != nil {
			return err
		}
		if l.CurrentVersionID == nil {
			return nil
		}
		return actions.AddReviewFlag(tx, *l.CurrentVersionID, models.ReviewFlagAppeal)
	})
}
