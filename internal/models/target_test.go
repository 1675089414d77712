package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTargetRefKind(t *testing.T) {
	id := uuid.New()

	kind, ok := ListingRef(id).Kind()
	assert.True(t, ok)
	assert.Equal(t, TargetListing, kind)

	kind, ok = AccountRef(id).Kind()
	assert.True(t, ok)
	assert.Equal(t, TargetAccount, kind)

	kind, ok = RatingRef(id).Kind()
	assert.True(t, ok)
	assert.Equal(t, TargetRating, kind)

	kind, ok = CollectionRef(id).Kind()
	assert.True(t, ok)
	assert.Equal(t, TargetCollection, kind)
}

func TestTargetRefValid(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	assert.False(t, TargetRef{}.Valid(), "empty ref")
	assert.True(t, ListingRef(id).Valid())

	twoSet := TargetRef{ListingID: &id, AccountID: &other}
	assert.False(t, twoSet.Valid(), "two variants set")
	_, ok := twoSet.Kind()
	assert.False(t, ok)
}

func TestTargetRefEqual(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	assert.True(t, ListingRef(id).Equal(ListingRef(id)))
	assert.False(t, ListingRef(id).Equal(ListingRef(other)))
	assert.False(t, ListingRef(id).Equal(AccountRef(id)), "same id, different kind")
	assert.False(t, TargetRef{}.Equal(TargetRef{}), "empty refs never match")
}

func TestTargetRefID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, RatingRef(id).ID())
	assert.Equal(t, uuid.Nil, TargetRef{}.ID())
}
