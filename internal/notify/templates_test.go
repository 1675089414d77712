package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTakedown(t *testing.T) {
	subject, body, err := Render(TmplOwnerTakedown, Vars{
		TargetName: "Weather Deluxe",
		TargetKind: "listing",
		Action:     "disable_listing",
		Policies:   []string{"Spam: Repeated posting"},
		Notes:      "multiple reports confirmed",
		CanAppeal:  true,
		AppealURL:  "https://example.com/appeal",
	})
	require.NoError(t, err)
	assert.Contains(t, subject, "Weather Deluxe")
	assert.Contains(t, body, "- Spam: Repeated posting")
	assert.Contains(t, body, "multiple reports confirmed")
	assert.Contains(t, body, "https://example.com/appeal")
}

func TestRenderTakedownNoAppeal(t *testing.T) {
	_, body, err := Render(TmplOwnerTakedown, Vars{
		TargetName: "Weather Deluxe",
		TargetKind: "listing",
		CanAppeal:  false,
		AppealURL:  "https://example.com/appeal",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "https://example.com/appeal")
}

func TestRenderDelayedRejection(t *testing.T) {
	_, body, err := Render(TmplOwnerDelayedRejection, Vars{
		TargetName:   "Weather Deluxe",
		TargetKind:   "listing",
		DelayedUntil: "2026-09-14",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "2026-09-14")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("no_such_template", Vars{})
	assert.Error(t, err)
}

func TestAllTemplatesRender(t *testing.T) {
	keys := []string{
		TmplReporterTakedown, TmplReporterNoAction, TmplReporterAppealTakedown,
		TmplReporterAppealApproved, TmplReporterAppealDenied, TmplReporterAlreadyAssessed,
		TmplOwnerTakedown, TmplOwnerDelayedRejection, TmplOwnerAppealApproved,
		TmplOwnerAppealDenied, TmplOwnerOverrideApproved, TmplOperatorHeld,
	}
	for _, key := range keys {
		subject, _, err := Render(key, Vars{TargetName: "x", TargetKind: "listing"})
		require.NoError(t, err, "template %s", key)
		assert.NotEmpty(t, subject, "template %s", key)
	}
}
