package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionKindPredicates(t *testing.T) {
	removals := []ActionKind{
		ActionDisableListing, ActionRejectVersions, ActionRejectVersionsDelayed,
		ActionBanAccount, ActionDeleteRating, ActionDeleteCollection,
	}
	for _, a := range removals {
		assert.True(t, a.Removal(), "%s", a)
		assert.False(t, a.Approval(), "%s", a)
	}

	approvals := []ActionKind{ActionApprove, ActionApproveVersion}
	for _, a := range approvals {
		assert.True(t, a.Approval(), "%s", a)
		assert.False(t, a.Removal(), "%s", a)
	}

	neutral := []ActionKind{
		ActionIgnore, ActionClosedNoAction, ActionForwardLegal, ActionRequeue,
	}
	for _, a := range neutral {
		assert.False(t, a.Removal(), "%s", a)
		assert.False(t, a.Approval(), "%s", a)
	}

	assert.False(t, ActionKind("teleport").Valid())
	assert.True(t, ActionBanAccount.Valid())
}

func TestDecisionMeta(t *testing.T) {
	var d Decision
	assert.Empty(t, d.Meta().VersionIDs, "no metadata yet")
	assert.Nil(t, d.Meta().DelayedUntil)

	deadline := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	versions := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, d.SetMeta(DecisionMetadata{
		VersionIDs:   versions,
		DelayedUntil: &deadline,
	}))

	m := d.Meta()
	assert.Equal(t, versions, m.VersionIDs)
	require.NotNil(t, m.DelayedUntil)
	assert.True(t, deadline.Equal(*m.DelayedUntil))
}

func TestDecisionExecutedAndSynced(t *testing.T) {
	var d Decision
	assert.False(t, d.Executed())
	assert.False(t, d.Synced())

	now := time.Now()
	d.ActionDate = &now
	assert.True(t, d.Executed())

	empty := ""
	d.CinderID = &empty
	assert.False(t, d.Synced(), "blank external id is not synced")

	ext := "d7c3"
	d.CinderID = &ext
	assert.True(t, d.Synced())
}
