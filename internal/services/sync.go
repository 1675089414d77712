package services

import (
	"context"
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/cinder"
	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncPath is the kind of call the sync layer makes for a decision.
type SyncPath string

const (
	SyncCreateReport  SyncPath = "create_report"
	SyncDecisionOnJob SyncPath = "decision_on_job"
	SyncOverride      SyncPath = "override"
)

// SelectSyncPath picks the case-service call for a decision. Selection is
// purely structural, based on which external ids exist: a synced case takes
// a decision post, a synced override ancestor without an open case takes an
// override post, anything else starts from a fresh report.
func SelectSyncPath(c *models.Case, ancestor *models.Decision) SyncPath {
	if c != nil && c.Synced() {
		return SyncDecisionOnJob
	}
	if ancestor != nil && ancestor.Synced() {
		return SyncOverride
	}
	return SyncCreateReport
}

// SyncService pushes local decisions and escalated reports to the external
// case service.
type SyncService struct {
	db     *gorm.DB
	cases  *CaseService
	client *cinder.Client

	reportQueueSlug string
}

func NewSyncService(db *gorm.DB, cases *CaseService, client *cinder.Client, reportQueueSlug string) *SyncService {
	return &SyncService{db: db, cases: cases, client: client, reportQueueSlug: reportQueueSlug}
}

// ReportToCinder records a local decision with the external service.
// Idempotent: decisions that already carry an external id are left alone, so
// the async layer may retry freely.
func (s *SyncService) ReportToCinder(ctx context.Context, decisionID uuid.UUID) error {
	var d models.Decision
	if err := s.db.Preload("Policies").First(&d, "id = ?", decisionID).Error; err != nil {
		return fmt.Errorf("%w: %s", ErrDecisionNotFound, decisionID)
	}
	if d.Synced() {
		return nil
	}

	var c *models.Case
	if d.CaseID != nil {
		var loaded models.Case
		if err := s.db.Preload("Reports").Preload("Reports.Reporter").
			First(&loaded, "id = ?", *d.CaseID).Error; err == nil {
			c = &loaded
		}
	}

	var ancestor *models.Decision
	if d.OverrideOfID != nil {
		var parent models.Decision
		if err := s.db.First(&parent, "id = ?", *d.OverrideOfID).Error; err == nil {
			ancestor, _ = s.cases.SyncedAncestor(&parent)
		}
	}

	req := cinder.DecisionRequest{
		Action:    string(d.Action),
		Notes:     d.Notes,
		PolicyIDs: policyCinderIDs(d.Policies),
	}

	switch SelectSyncPath(c, ancestor) {
	case SyncDecisionOnJob:
		externalID, err := s.client.CreateDecision(ctx, *c.CinderJobID, req)
		if err != nil {
			metrics.CinderCalls.WithLabelValues("create_decision", "error").Inc()
			return err
		}
		metrics.CinderCalls.WithLabelValues("create_decision", "ok").Inc()
		return s.db.Model(&d).Update("cinder_id", externalID).Error

	case SyncOverride:
		externalID, err := s.client.CreateOverride(ctx, *ancestor.CinderID, req)
		if err != nil {
			metrics.CinderCalls.WithLabelValues("create_override", "error").Inc()
			return err
		}
		metrics.CinderCalls.WithLabelValues("create_override", "ok").Inc()
		return s.db.Model(&d).Update("cinder_id", externalID).Error

	default:
		// Very first adjudication of this target: open the job from a
		// report, then record the decision on it.
		if c == nil {
			created, err := s.cases.GetOrCreateForTarget(d.TargetRef)
			if err != nil {
				return err
			}
			if err := s.db.Model(&d).Update("case_id", created.ID).Error; err != nil {
				return err
			}
			c = created
		}
		if err := s.syncCase(ctx, c, s.reportQueueSlug); err != nil {
			return err
		}
		externalID, err := s.client.CreateDecision(ctx, *c.CinderJobID, req)
		if err != nil {
			metrics.CinderCalls.WithLabelValues("create_decision", "error").Inc()
			return err
		}
		metrics.CinderCalls.WithLabelValues("create_decision", "ok").Inc()
		return s.db.Model(&d).Update("cinder_id", externalID).Error
	}
}

// ReportCase escalates a case with a fresh report to the external service.
// Idempotent via the case's external id.
func (s *SyncService) ReportCase(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.Get(caseID)
	if err != nil {
		return err
	}
	return s.syncCase(ctx, c, s.reportQueueSlug)
}

// EscalateDecisionCase hands a forwarded decision's case to the named
// external queue. Cases the external service already tracks stay where they
// are; queue placement is its call from then on.
func (s *SyncService) EscalateDecisionCase(ctx context.Context, decisionID uuid.UUID, queueSlug string) error {
	var d models.Decision
	if err := s.db.First(&d, "id = ?", decisionID).Error; err != nil {
		return fmt.Errorf("%w: %s", ErrDecisionNotFound, decisionID)
	}
	if d.CaseID == nil {
		return fmt.Errorf("%w: decision %s has no case to escalate", ErrConfig, decisionID)
	}
	c, err := s.cases.Get(*d.CaseID)
	if err != nil {
		return err
	}
	return s.syncCase(ctx, c, queueSlug)
}

func (s *SyncService) syncCase(ctx context.Context, c *models.Case, queueSlug string) error {
	if c.Synced() {
		return nil
	}
	target, err := LoadTarget(s.db, c.TargetRef)
	if err != nil {
		return err
	}

	req := cinder.ReportRequest{
		Entity:    targetEntity(target),
		QueueSlug: queueSlug,
	}
	if len(c.Reports) > 0 {
		first := c.Reports[0]
		req.Reason = first.Reason
		req.Message = first.Message
		if email := first.Email(); email != "" {
			req.Reporter = cinder.Entity{
				EntityType: "reporter",
				Attributes: map[string]string{"email": email},
			}
		}
	}

	jobID, err := s.client.CreateReport(ctx, req)
	if err != nil {
		metrics.CinderCalls.WithLabelValues("create_report", "error").Inc()
		return err
	}
	metrics.CinderCalls.WithLabelValues("create_report", "ok").Inc()

	if err := s.db.Model(c).Update("cinder_job_id", jobID).Error; err != nil {
		return err
	}
	c.CinderJobID = &jobID
	return nil
}

func targetEntity(t models.Target) cinder.Entity {
	attrs := map[string]string{"id": t.TargetID().String()}
	switch target := t.(type) {
	case *models.Listing:
		attrs["slug"] = target.Slug
		attrs["name"] = target.Name
	case *models.Account:
		attrs["email"] = target.Email
	case *models.Rating:
		attrs["body"] = target.Body
	case *models.Collection:
		attrs["slug"] = target.Slug
		attrs["name"] = target.Name
	}
	return cinder.Entity{EntityType: string(t.TargetKind()), Attributes: attrs}
}

func policyCinderIDs(policies []models.Policy) []string {
	ids := make([]string, 0, len(policies))
	for i := range policies {
		if policies[i].CinderID != "" {
			ids = append(ids, policies[i].CinderID)
		}
	}
	return ids
}
