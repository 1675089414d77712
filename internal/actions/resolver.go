package actions

import (
	"fmt"

	"github.com/craftbazaar/moderation-engine/internal/models"
)

// ResolveInput carries the action context a decision arrives with. Overridden
// and Appealed are nil when the decision neither overrides nor resolves an
// appeal. OverriddenExecuted is true when the overridden decision, or failing
// that one of its own override ancestors, was actually executed.
type ResolveInput struct {
	New                models.ActionKind
	Overridden         *models.ActionKind
	OverriddenExecuted bool
	Appealed           *models.ActionKind
}

// ResolveHandler selects the handler kind for a decision. Pure function over
// the three action inputs; rules apply in priority order:
//
//  1. approving after an appealed removal reinstates the target
//  2. repeating the appealed removal affirms it (no mutation)
//  3. approving over an executed removal override reinstates with the
//     distinct override notification
//  4. an override of a never-executed (still held) decision is moot and
//     falls through to the base mapping
//  5. otherwise the base 1:1 action mapping applies
func ResolveHandler(in ResolveInput) (HandlerKind, error) {
	if in.Appealed != nil {
		if in.Appealed.Removal() && in.New.Approval() {
			return KindTargetAppealApprove, nil
		}
		if *in.Appealed == in.New && in.New.Removal() {
			return KindTargetAppealAffirm, nil
		}
	}

	if in.Overridden != nil && in.OverriddenExecuted &&
		in.Overridden.Removal() && in.New.Approval() {
		return KindOverrideApprove, nil
	}

	return baseHandlerKind(in.New)
}

func baseHandlerKind(a models.ActionKind) (HandlerKind, error) {
	switch a {
	case models.ActionApprove:
		return KindApprove, nil
	case models.ActionApproveVersion:
		return KindApproveVersion, nil
	case models.ActionDisableListing:
		return KindDisableListing, nil
	case models.ActionRejectVersions:
		return KindRejectVersions, nil
	case models.ActionRejectVersionsDelayed:
		return KindRejectVersionsDelayed, nil
	case models.ActionBanAccount:
		return KindBanAccount, nil
	case models.ActionDeleteRating:
		return KindDeleteRating, nil
	case models.ActionDeleteCollection:
		return KindDeleteCollection, nil
	case models.ActionIgnore:
		return KindIgnore, nil
	case models.ActionClosedNoAction:
		return KindClosedNoAction, nil
	case models.ActionForwardLegal:
		return KindForwardLegal, nil
	case models.ActionRequeue:
		return KindForwardReviewers, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotImplemented, a)
}
