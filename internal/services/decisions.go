package services

import (
	"context"
	"fmt"
	"time"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/metrics"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecisionService records adjudications and executes their enforcement
// actions through the handler registry.
type DecisionService struct {
	db         *gorm.DB
	cases      *CaseService
	queues     *QueueService
	registry   *actions.Registry
	notifier   *NotifyService
	dispatcher tasks.Dispatcher
}

func NewDecisionService(db *gorm.DB, cases *CaseService, queues *QueueService,
	registry *actions.Registry, notifier *NotifyService, dispatcher tasks.Dispatcher) *DecisionService {
	return &DecisionService{
		db:         db,
		cases:      cases,
		queues:     queues,
		registry:   registry,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

type RecordDecisionInput struct {
	Target       models.TargetRef
	Action       models.ActionKind
	Notes        string
	CaseID       *uuid.UUID
	OverrideOfID *uuid.UUID
	ReviewerID   *uuid.UUID
	PolicyIDs    []uuid.UUID
	Metadata     models.DecisionMetadata
	// CinderID is set when the decision originates from the case service.
	CinderID *string
}

// Record persists a decision and schedules its execution. The decision chain
// is append-only: overrides point backward, nothing is rewritten.
func (s *DecisionService) Record(ctx context.Context, in RecordDecisionInput) (*models.Decision, error) {
	if !in.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrConfig, in.Action)
	}
	if !in.Target.Valid() {
		return nil, fmt.Errorf("%w: target reference must have exactly one variant", ErrConfig)
	}

	if in.OverrideOfID != nil {
		var overridden models.Decision
		if err := s.db.First(&overridden, "id = ?", *in.OverrideOfID).Error; err != nil {
			return nil, fmt.Errorf("%w: override of %s", ErrDecisionNotFound, *in.OverrideOfID)
		}
		if !overridden.TargetRef.Equal(in.Target) {
			return nil, fmt.Errorf("%w: override must share the overridden decision's target", ErrConfig)
		}
	}

	caseID := in.CaseID
	if caseID == nil {
		c, err := s.cases.GetOrCreateForTarget(in.Target)
		if err != nil {
			return nil, err
		}
		caseID = &c.ID
	}

	d := models.Decision{
		ID:           uuid.New(),
		TargetRef:    in.Target,
		Action:       in.Action,
		Notes:        in.Notes,
		CaseID:       caseID,
		OverrideOfID: in.OverrideOfID,
		ReviewerID:   in.ReviewerID,
		CinderID:     in.CinderID,
	}
	if err := d.SetMeta(in.Metadata); err != nil {
		return nil, err
	}

	var policies []models.Policy
	if len(in.PolicyIDs) > 0 {
		if err := s.db.Where("id IN ?", in.PolicyIDs).Find(&policies).Error; err != nil {
			return nil, err
		}
		if len(policies) != len(in.PolicyIDs) {
			return nil, fmt.Errorf("%w: %d of %d cited policies are unknown",
				ErrConfig, len(in.PolicyIDs)-len(policies), len(in.PolicyIDs))
		}
		for i := range policies {
			if !policies[i].AuthorizesAction(in.Action) {
				return nil, fmt.Errorf("%w: policy %q does not authorize %s",
					ErrConfig, policies[i].FullName(), in.Action)
			}
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		if len(policies) > 0 {
			return tx.Model(&d).Association("Policies").Append(&policies)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, tasks.Task{
		Kind:       tasks.TaskExecuteDecision,
		DecisionID: d.ID,
	}); err != nil {
		return nil, err
	}
	return &d, nil
}

// Get loads a decision with its case and policies.
func (s *DecisionService) Get(id uuid.UUID) (*models.Decision, error) {
	var d models.Decision
	if err := s.db.Preload("Case").Preload("Policies").Preload("Policies.Parent").
		First(&d, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
	}
	return &d, nil
}

// ListHeld returns decisions stuck at the hold gate, oldest first.
func (s *DecisionService) ListHeld(limit, offset int) ([]models.Decision, int64, error) {
	held := s.db.Model(&models.Decision{}).
		Where("action_date IS NULL").
		Where("EXISTS (SELECT 1 FROM activity_logs WHERE activity_logs.decision_id = decisions.id AND activity_logs.action = ?)",
			models.ActivityDecisionHeld)

	var total int64
	if err := held.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var decisions []models.Decision
	if err := held.Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&decisions).Error; err != nil {
		return nil, 0, err
	}
	return decisions, total, nil
}

// Handler resolves the handler applying to a decision.
func (s *DecisionService) Handler(d *models.Decision) (actions.Handler, error) {
	in, err := s.cases.ResolveInputFor(d)
	if err != nil {
		return nil, err
	}
	kind, err := actions.ResolveHandler(in)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(kind)
}

// ExecuteAction runs the decision's enforcement action. Already-executed
// decisions are a no-op so async retries stay safe. Without releaseHold a
// decision failing the hold gate only writes an audit entry and alerts
// operators; releaseHold is the explicit second-level approval path.
func (s *DecisionService) ExecuteAction(id uuid.UUID, releaseHold bool) (*models.ActivityLog, bool, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	if d.Executed() {
		return nil, false, nil
	}

	target, err := LoadTarget(s.db, d.TargetRef)
	if err != nil {
		return nil, false, err
	}

	handler, err := s.Handler(d)
	if err != nil {
		return nil, false, err
	}
	if !actions.ValidTarget(handler, target) {
		return nil, false, fmt.Errorf("%w: %s on %s", actions.ErrInvalidTarget, d.Action, target.TargetKind())
	}

	if !releaseHold && handler.ShouldHold(d, target) {
		if err := s.holdAction(d, target); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	var entry *models.ActivityLog
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry, err = handler.Mutate(tx, d, target)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Model(d).Update("action_date", now).Error; err != nil {
			return err
		}
		d.ActionDate = &now
		if d.CaseID != nil {
			var c models.Case
			if err := tx.First(&c, "id = ?", *d.CaseID).Error; err == nil {
				if err := s.queues.ClearNeedsHumanReviewFlags(tx, &c); err != nil {
					return err
				}
			}
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, false, err
	}

	metrics.DecisionsExecuted.WithLabelValues(string(d.Action)).Inc()
	return entry, false, nil
}

// holdAction records the hold without mutating anything. ActionDate stays
// null until an operator releases the hold.
func (s *DecisionService) holdAction(d *models.Decision, target models.Target) error {
	entry := &models.ActivityLog{
		ID:         uuid.New(),
		TargetRef:  d.TargetRef,
		Action:     models.ActivityDecisionHeld,
		DecisionID: &d.ID,
		ActorID:    d.ReviewerID,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return err
	}
	metrics.DecisionsHeld.WithLabelValues(string(d.Action)).Inc()
	return s.notifier.NotifyHeld(d, target)
}

// ReleaseHold is the operator's second-level approval: it executes a held
// decision, then fans out notifications.
func (s *DecisionService) ReleaseHold(id uuid.UUID) (*models.ActivityLog, error) {
	entry, _, err := s.ExecuteAction(id, true)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if err := s.notifier.SendNotifications(id, true); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// ExecuteAndNotify is the task-worker entry point: execute (or hold), then
// notify, then hand off to the sync layer when the decision is local-origin.
func (s *DecisionService) ExecuteAndNotify(ctx context.Context, id uuid.UUID) error {
	entry, held, err := s.ExecuteAction(id, false)
	if err != nil {
		return err
	}
	if held || entry == nil {
		return nil
	}
	if err := s.notifier.SendNotifications(id, true); err != nil {
		return err
	}
	d, err := s.Get(id)
	if err != nil {
		return err
	}
	if !d.Synced() {
		return s.dispatcher.Dispatch(ctx, tasks.Task{
			Kind:       tasks.TaskSyncDecision,
			DecisionID: d.ID,
		})
	}
	return nil
}
