package services

import (
	"context"
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecisionEvent is a decision taken by a human reviewer in the external case
// service, delivered over the webhook.
type DecisionEvent struct {
	JobID            string
	DecisionCinderID string
	Action           models.ActionKind
	Notes            string
	PolicyCinderIDs  []string
	Queue            string
	ReviewerID       *uuid.UUID
	VersionIDs       []uuid.UUID
}

// QueueMoveEvent is a case changing queues in the external service.
type QueueMoveEvent struct {
	JobID string
	Queue string
	Notes string
}

// CinderEventService turns webhook payloads into local decisions and queue
// moves.
type CinderEventService struct {
	db        *gorm.DB
	cases     *CaseService
	queues    *QueueService
	decisions *DecisionService
}

func NewCinderEventService(db *gorm.DB, cases *CaseService, queues *QueueService,
	decisions *DecisionService) *CinderEventService {
	return &CinderEventService{db: db, cases: cases, queues: queues, decisions: decisions}
}

// ProcessDecision records an externally-taken decision against the local
// case. Replays of the same event are absorbed by the external id's unique
// index.
func (s *CinderEventService) ProcessDecision(ctx context.Context, ev DecisionEvent) (*models.Decision, error) {
	c, err := s.cases.GetByCinderJobID(ev.JobID)
	if err != nil {
		return nil, err
	}

	var existing models.Decision
	if err := s.db.First(&existing, "cinder_id = ?", ev.DecisionCinderID).Error; err == nil {
		return &existing, nil
	}

	policyIDs, err := s.mapPolicies(ev.PolicyCinderIDs)
	if err != nil {
		return nil, err
	}

	if ev.Queue != "" && c.FromQueue != ev.Queue {
		if err := s.db.Model(c).Update("from_queue", ev.Queue).Error; err != nil {
			return nil, err
		}
	}

	cinderID := ev.DecisionCinderID
	return s.decisions.Record(ctx, RecordDecisionInput{
		Target:     c.TargetRef,
		Action:     ev.Action,
		Notes:      ev.Notes,
		CaseID:     &c.ID,
		ReviewerID: ev.ReviewerID,
		PolicyIDs:  policyIDs,
		Metadata:   models.DecisionMetadata{VersionIDs: ev.VersionIDs},
		CinderID:   &cinderID,
	})
}

// ProcessQueueMove forwards a queue change to the reconciliation layer.
func (s *CinderEventService) ProcessQueueMove(ev QueueMoveEvent) error {
	c, err := s.cases.GetByCinderJobID(ev.JobID)
	if err != nil {
		return err
	}
	return s.queues.ProcessQueueMove(c.ID, ev.Queue, ev.Notes)
}

// mapPolicies resolves external policy ids to local rows. Unknown ids are an
// operator problem, not a retry problem.
func (s *CinderEventService) mapPolicies(cinderIDs []string) ([]uuid.UUID, error) {
	if len(cinderIDs) == 0 {
		return nil, nil
	}
	var policies []models.Policy
	if err := s.db.Where("cinder_id IN ?", cinderIDs).Find(&policies).Error; err != nil {
		return nil, err
	}
	if len(policies) != len(cinderIDs) {
		return nil, fmt.Errorf("%w: %d of %d policies unknown",
			ErrConfig, len(cinderIDs)-len(policies), len(cinderIDs))
	}
	ids := make([]uuid.UUID, len(policies))
	for i := range policies {
		ids[i] = policies[i].ID
	}
	return ids, nil
}
