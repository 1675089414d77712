package services

import (
	"testing"

	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSelectSyncPath(t *testing.T) {
	syncedCase := &models.Case{CinderJobID: strPtr("job-1")}
	localCase := &models.Case{}
	syncedAncestor := &models.Decision{CinderID: strPtr("dec-1")}

	tests := []struct {
		name     string
		c        *models.Case
		ancestor *models.Decision
		want     SyncPath
	}{
		{"synced case", syncedCase, nil, SyncDecisionOnJob},
		{"synced case wins over ancestor", syncedCase, syncedAncestor, SyncDecisionOnJob},
		{"local case with synced ancestor", localCase, syncedAncestor, SyncOverride},
		{"no case with synced ancestor", nil, syncedAncestor, SyncOverride},
		{"local case, no ancestor", localCase, nil, SyncCreateReport},
		{"nothing synced anywhere", nil, nil, SyncCreateReport},
		{"unsynced ancestor counts for nothing", localCase, &models.Decision{}, SyncCreateReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectSyncPath(tt.c, tt.ancestor))
		})
	}
}

func TestTargetEntity(t *testing.T) {
	l := &models.Listing{Slug: "weather-deluxe", Name: "Weather Deluxe"}
	e := targetEntity(l)
	assert.Equal(t, "listing", e.EntityType)
	assert.Equal(t, "weather-deluxe", e.Attributes["slug"])

	a := &models.Account{Email: "dev@example.com"}
	e = targetEntity(a)
	assert.Equal(t, "account", e.EntityType)
	assert.Equal(t, "dev@example.com", e.Attributes["email"])
}

func TestPolicyCinderIDs(t *testing.T) {
	policies := []models.Policy{
		{CinderID: "p-1"},
		{CinderID: ""},
		{CinderID: "p-3"},
	}
	assert.Equal(t, []string{"p-1", "p-3"}, policyCinderIDs(policies))
	assert.Empty(t, policyCinderIDs(nil))
}
