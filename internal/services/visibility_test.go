package services

import (
	"testing"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanView(t *testing.T) {
	db := newTestDB(t)
	vis := NewVisibility(repositories.NewPostgresFollowRepository(db))
	open := newTestUser(t, db, "open", false)
	hermit := newTestUser(t, db, "hermit", true)
	follower := newTestUser(t, db, "follower", false)
	stranger := newTestUser(t, db, "stranger", false)
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, FolloweeID: hermit.ID}).Error)

	grant, err := vis.CanView(stranger.ID, open)
	require.NoError(t, err)
	assert.Equal(t, GrantPublic, grant)
	assert.True(t, grant.Viewable())

	grant, err = vis.CanView(hermit.ID, hermit)
	require.NoError(t, err)
	assert.Equal(t, GrantFollower, grant)

	grant, err = vis.CanView(follower.ID, hermit)
	require.NoError(t, err)
	assert.Equal(t, GrantFollower, grant)

	grant, err = vis.CanView(stranger.ID, hermit)
	require.NoError(t, err)
	assert.Equal(t, GrantForbidden, grant)
	assert.False(t, grant.Viewable())

	// A follow edge in the other direction grants nothing.
	require.NoError(t, db.Create(&models.Follow{FollowerID: hermit.ID, FolloweeID: stranger.ID}).Error)
	grant, err = vis.CanView(stranger.ID, hermit)
	require.NoError(t, err)
	assert.Equal(t, GrantForbidden, grant)
}
