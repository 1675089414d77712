package tasks

import (
	"context"

	"github.com/google/uuid"
)

// Task kinds routed by the worker.
const (
	TaskExecuteDecision   = "execute_decision"
	TaskSyncDecision      = "sync_decision"
	TaskSyncReport        = "sync_report"
	TaskForwardLegal      = "forward_legal"
	TaskEscalateReviewers = "escalate_reviewers"
)

// Task is one unit of deferred work. Tasks are fire-and-forget and may be
// retried on transient failure, so every task handler must be idempotent.
type Task struct {
	Kind       string    `json:"kind"`
	DecisionID uuid.UUID `json:"decision_id,omitempty"`
	CaseID     uuid.UUID `json:"case_id,omitempty"`
	Attempt    int       `json:"attempt"`
}

// Dispatcher enqueues tasks for deferred execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Task) error
}
