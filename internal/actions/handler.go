package actions

import (
	"errors"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"gorm.io/gorm"
)

var (
	// ErrNotImplemented means no handler exists for an (action, override,
	// appeal) triple. Caller misuse, never retried.
	ErrNotImplemented = errors.New("no handler for action")
	// ErrInvalidTarget means the decision's target type is outside the
	// handler's declared set. Caller misuse, never retried.
	ErrInvalidTarget = errors.New("invalid target type for action")
)

// HandlerKind identifies which handler applies to a decision once override
// and appeal context is taken into account.
type HandlerKind string

const (
	KindApprove               HandlerKind = "approve"
	KindApproveVersion        HandlerKind = "approve_version"
	KindDisableListing        HandlerKind = "disable_listing"
	KindRejectVersions        HandlerKind = "reject_versions"
	KindRejectVersionsDelayed HandlerKind = "reject_versions_delayed"
	KindBanAccount            HandlerKind = "ban_account"
	KindDeleteRating          HandlerKind = "delete_rating"
	KindDeleteCollection      HandlerKind = "delete_collection"
	KindIgnore                HandlerKind = "ignore"
	KindClosedNoAction        HandlerKind = "closed_no_action"
	KindForwardLegal          HandlerKind = "forward_legal"
	KindForwardReviewers      HandlerKind = "forward_reviewers"
	KindOverrideApprove       HandlerKind = "override_approve"
	KindTargetAppealApprove   HandlerKind = "target_appeal_approve"
	KindTargetAppealAffirm    HandlerKind = "target_appeal_affirmation"
)

// Handler is the action-specific component of decision execution. Mutate and
// Owners receive the already-loaded target; Mutate runs inside the decision
// transaction.
type Handler interface {
	Kind() HandlerKind
	ValidTargets() []models.TargetKind
	ShouldHold(d *models.Decision, t models.Target) bool
	Mutate(tx *gorm.DB, d *models.Decision, t models.Target) (*models.ActivityLog, error)
	Owners(db *gorm.DB, t models.Target) ([]models.Account, error)
	// Reporter notification template keys for the first decision and for a
	// decision resolving an appeal.
	ReporterTemplate() string
	ReporterAppealTemplate() string
}

// Registry maps handler kinds to their implementations. Populated once at
// startup.
type Registry struct {
	handlers map[HandlerKind]Handler
}

func NewRegistry(dispatcher tasks.Dispatcher) *Registry {
	r := &Registry{handlers: make(map[HandlerKind]Handler)}
	for _, h := range []Handler{
		&ApproveHandler{},
		&ApproveVersionHandler{},
		&DisableListingHandler{},
		&RejectVersionsHandler{},
		&RejectVersionsDelayedHandler{},
		&BanAccountHandler{},
		&DeleteRatingHandler{},
		&DeleteCollectionHandler{},
		&IgnoreHandler{},
		&ClosedNoActionHandler{},
		&ForwardLegalHandler{dispatcher: dispatcher},
		&ForwardReviewersHandler{dispatcher: dispatcher},
		&OverrideApproveHandler{},
		&TargetAppealApproveHandler{},
		&TargetAppealAffirmHandler{},
	} {
		r.handlers[h.Kind()] = h
	}
	return r
}

// Get returns the handler for kind, or ErrNotImplemented.
func (r *Registry) Get(kind HandlerKind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, ErrNotImplemented
	}
	return h, nil
}

// ValidTarget reports whether t's kind is in the handler's declared set.
func ValidTarget(h Handler, t models.Target) bool {
	for _, k := range h.ValidTargets() {
		if k == t.TargetKind() {
			return true
		}
	}
	return false
}

var allTargets = []models.TargetKind{
	models.TargetListing, models.TargetAccount, models.TargetRating, models.TargetCollection,
}
