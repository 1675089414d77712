package services

import (
	"errors"

	"github.com/craftbazaar/moderation-engine/internal/actions"
)

var (
	// ErrConfig marks caller misuse: wrong target type, missing appellant,
	// invalid action. Fatal, never retried by the task worker.
	ErrConfig = errors.New("configuration error")

	ErrReportNotFound   = errors.New("report not found")
	ErrDecisionNotFound = errors.New("decision not found")
	ErrCaseNotFound     = errors.New("case not found")
	ErrTargetNotFound   = errors.New("target not found")
)

// Fatal reports whether err must not be retried by the async dispatcher.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfig) ||
		errors.Is(err, actions.ErrNotImplemented) ||
		errors.Is(err, actions.ErrInvalidTarget)
}
