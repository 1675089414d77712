package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestPolicyFullName(t *testing.T) {
	root := Policy{Name: "Spam"}
	assert.Equal(t, "Spam", root.FullName())

	child := Policy{Name: "Repeated posting", Parent: &root}
	assert.Equal(t, "Spam: Repeated posting", child.FullName())

	grandchild := Policy{Name: "Bot networks", Parent: &child}
	assert.Equal(t, "Spam: Repeated posting: Bot networks", grandchild.FullName())
}

func TestPolicyAuthorizesAction(t *testing.T) {
	p := Policy{
		EnforcementActions: datatypes.JSON(`["disable_listing","ban_account"]`),
	}
	assert.True(t, p.AuthorizesAction(ActionDisableListing))
	assert.True(t, p.AuthorizesAction(ActionBanAccount))
	assert.False(t, p.AuthorizesAction(ActionDeleteRating))

	var empty Policy
	assert.False(t, empty.AuthorizesAction(ActionApprove))
	assert.Empty(t, empty.Actions())
}

func TestPolicyRenderText(t *testing.T) {
	p := Policy{Text: "Content in the {category} category is not allowed on {surface}."}
	out := p.RenderText(map[string]string{
		"category": "counterfeit",
		"surface":  "the marketplace",
	})
	assert.Equal(t, "Content in the counterfeit category is not allowed on the marketplace.", out)

	assert.Equal(t, p.Text, p.RenderText(nil), "no values leaves placeholders")
}
