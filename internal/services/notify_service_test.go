package services

import (
	"testing"

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/stretchr/testify/assert"
)

func TestOwnerTemplate(t *testing.T) {
	tests := []struct {
		name     string
		kind     actions.HandlerKind
		action   models.ActionKind
		isAppeal bool
		want     string
	}{
		{"override approve", actions.KindOverrideApprove, models.ActionApprove, false,
			notify.TmplOwnerOverrideApproved},
		{"appeal approve", actions.KindTargetAppealApprove, models.ActionApprove, true,
			notify.TmplOwnerAppealApproved},
		{"appeal affirm", actions.KindTargetAppealAffirm, models.ActionDisableListing, true,
			notify.TmplOwnerAppealDenied},
		{"appeal resolved by approval", actions.KindApprove, models.ActionApprove, true,
			notify.TmplOwnerAppealApproved},
		{"appeal resolved by harsher removal", actions.KindBanAccount, models.ActionBanAccount, true,
			notify.TmplOwnerAppealDenied},
		{"delayed rejection", actions.KindRejectVersionsDelayed, models.ActionRejectVersionsDelayed, false,
			notify.TmplOwnerDelayedRejection},
		{"plain removal", actions.KindDisableListing, models.ActionDisableListing, false,
			notify.TmplOwnerTakedown},
		{"no action means no owner mail", actions.KindIgnore, models.ActionIgnore, false, ""},
		{"plain approval means no owner mail", actions.KindApprove, models.ActionApprove, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &models.Decision{Action: tt.action}
			assert.Equal(t, tt.want, ownerTemplate(tt.kind, d, tt.isAppeal))
		})
	}
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(actions.ErrNotImplemented))
	assert.True(t, Fatal(actions.ErrInvalidTarget))
	assert.True(t, Fatal(ErrConfig))
	assert.False(t, Fatal(assert.AnError))
	assert.False(t, Fatal(ErrDecisionNotFound), "missing rows may appear after replication lag")
}

func TestBaseVarsRendersPolicyText(t *testing.T) {
	s := &NotifyService{appealURL: "https://example.com/appeal"}
	d := &models.Decision{
		Action: models.ActionDisableListing,
		Policies: []models.Policy{
			{Name: "Spam", Text: "Repeated promotional posting in {target}."},
			{Name: "Conduct"},
		},
	}
	vars := s.baseVars(d, &models.Listing{Name: "Weather Deluxe"})
	assert.Equal(t, []string{
		"Spam: Repeated promotional posting in Weather Deluxe.",
		"Conduct",
	}, vars.Policies)
	assert.Equal(t, "https://example.com/appeal", vars.AppealURL)
}
