package repositories

import (
	"testing"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFollowEdgeLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}))

	ok, err := repo.HasEdge(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The edge is directed.
	ok, err = repo.HasEdge(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.CreateFollow(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	removed, err := repo.DeleteFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListFollowersMostFollowedFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	hub := seedUser(t, db, "hub")
	popular := seedUser(t, db, "popular")
	regular := seedUser(t, db, "regular")
	extra := seedUser(t, db, "extra")

	// Both follow hub; popular also has a follower of their own.
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: popular.ID, FolloweeID: hub.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: regular.ID, FolloweeID: hub.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: extra.ID, FolloweeID: popular.ID}))

	followers, err := repo.ListFollowers(hub.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, popular.ID, followers[0].ID)
	assert.Equal(t, regular.ID, followers[1].ID)

	count, err := repo.FollowerCount(hub.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	ids, err := repo.FollowingIDs(popular.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{hub.ID}, ids)
}

func TestFollowRequestsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	target := seedUser(t, db, "target")
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")

	require.NoError(t, repo.CreateRequest(&models.FollowRequest{RequesterID: first.ID, TargetID: target.ID}))
	require.NoError(t, repo.CreateRequest(&models.FollowRequest{RequesterID: second.ID, TargetID: target.ID}))

	err := repo.CreateRequest(&models.FollowRequest{RequesterID: first.ID, TargetID: target.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	reqs, err := repo.ListRequestsForTarget(target.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, first.ID, reqs[0].RequesterID)
	assert.Equal(t, second.ID, reqs[1].RequesterID)

	got, err := repo.GetRequestByPair(first.ID, target.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteRequest(got.ID))

	_, err = repo.GetRequestByPair(first.ID, target.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
