package actions

import (
	"testing"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func action(a models.ActionKind) *models.ActionKind { return &a }

func TestResolveHandler_BaseMapping(t *testing.T) {
	cases := map[models.ActionKind]HandlerKind{
		models.ActionApprove:               KindApprove,
		models.ActionApproveVersion:        KindApproveVersion,
		models.ActionDisableListing:        KindDisableListing,
		models.ActionRejectVersions:        KindRejectVersions,
		models.ActionRejectVersionsDelayed: KindRejectVersionsDelayed,
		models.ActionBanAccount:            KindBanAccount,
		models.ActionDeleteRating:          KindDeleteRating,
		models.ActionDeleteCollection:      KindDeleteCollection,
		models.ActionIgnore:                KindIgnore,
		models.ActionClosedNoAction:        KindClosedNoAction,
		models.ActionForwardLegal:          KindForwardLegal,
		models.ActionRequeue:               KindForwardReviewers,
	}
	for in, want := range cases {
		kind, err := ResolveHandler(ResolveInput{New: in})
		require.NoError(t, err, "action %s", in)
		assert.Equal(t, want, kind, "action %s", in)
	}
}

func TestResolveHandler_UnknownAction(t *testing.T) {
	_, err := ResolveHandler(ResolveInput{New: "teleport"})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestResolveHandler_OverrideApprove(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:                models.ActionApprove,
		Overridden:         action(models.ActionDisableListing),
		OverriddenExecuted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, KindOverrideApprove, kind)
}

// An override of a decision that never executed (it was held) has nothing to
// reinstate, so the plain approve handler applies.
func TestResolveHandler_MootOverrideFallsThrough(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:                models.ActionApprove,
		Overridden:         action(models.ActionDisableListing),
		OverriddenExecuted: false,
	})
	require.NoError(t, err)
	assert.Equal(t, KindApprove, kind)
}

// Overriding a removal with another removal is just the new removal.
func TestResolveHandler_OverrideWithRemoval(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:                models.ActionBanAccount,
		Overridden:         action(models.ActionDisableListing),
		OverriddenExecuted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, KindBanAccount, kind)
}

func TestResolveHandler_AppealApprove(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:      models.ActionApprove,
		Appealed: action(models.ActionDisableListing),
	})
	require.NoError(t, err)
	assert.Equal(t, KindTargetAppealApprove, kind)
}

func TestResolveHandler_AppealAffirm(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:      models.ActionDisableListing,
		Appealed: action(models.ActionDisableListing),
	})
	require.NoError(t, err)
	assert.Equal(t, KindTargetAppealAffirm, kind)
}

// A different removal on an appeal case is not an affirmation; it maps to
// its own handler.
func TestResolveHandler_AppealEscalation(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:      models.ActionBanAccount,
		Appealed: action(models.ActionDisableListing),
	})
	require.NoError(t, err)
	assert.Equal(t, KindBanAccount, kind)
}

// Appeal context wins over override context when both are present.
func TestResolveHandler_AppealBeatsOverride(t *testing.T) {
	kind, err := ResolveHandler(ResolveInput{
		New:                models.ActionApprove,
		Overridden:         action(models.ActionBanAccount),
		OverriddenExecuted: true,
		Appealed:           action(models.ActionDisableListing),
	})
	require.NoError(t, err)
	assert.Equal(t, KindTargetAppealApprove, kind)
}

func TestRegistry_CoversEveryResolvableKind(t *testing.T) {
	r := NewRegistry(nil)
	kinds := []HandlerKind{
		KindApprove, KindApproveVersion, KindDisableListing, KindRejectVersions,
		KindRejectVersionsDelayed, KindBanAccount, KindDeleteRating,
		KindDeleteCollection, KindIgnore, KindClosedNoAction, KindForwardLegal,
		KindForwardReviewers, KindOverrideApprove, KindTargetAppealApprove,
		KindTargetAppealAffirm,
	}
	for _, k := range kinds {
		h, err := r.Get(k)
		require.NoError(t, err, "kind %s", k)
		assert.Equal(t, k, h.Kind())
	}

	_, err := r.Get("nonsense")
	assert.ErrorIs(t, err, ErrNotImplemented)
}

// A reporter appeal that falls through to a base approval handler means the
// appealed decision was a non-removal, so its outcome mail must confirm the
// decision rather than announce a restoration.
func TestApprovalReporterAppealTemplatesConfirm(t *testing.T) {
	assert.Equal(t, notify.TmplReporterAppealDenied, (&ApproveHandler{}).ReporterAppealTemplate())
	assert.Equal(t, notify.TmplReporterAppealDenied, (&ApproveVersionHandler{}).ReporterAppealTemplate())
	assert.Equal(t, notify.TmplReporterAppealApproved, (&TargetAppealApproveHandler{}).ReporterAppealTemplate())
}
