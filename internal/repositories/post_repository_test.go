package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeedCursor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.CreatePost(&models.Post{UserID: alice.ID, Text: fmt.Sprintf("a%d", i), CreatedAt: time.Now()}))
		require.NoError(t, repo.CreatePost(&models.Post{UserID: carol.ID, Text: fmt.Sprintf("c%d", i), CreatedAt: time.Now()}))
	}

	// Feed over alice and bob only; carol's posts are filtered out.
	page1, err := repo.ListFeed([]uint{alice.ID, bob.ID}, 0, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	for _, p := range page1 {
		assert.Equal(t, alice.ID, p.UserID)
	}
	assert.Greater(t, page1[0].ID, page1[1].ID)

	page2, err := repo.ListFeed([]uint{alice.ID, bob.ID}, page1[2].ID, 3)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Less(t, page2[0].ID, page1[2].ID)
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	now := time.Now()
	post := &models.Post{UserID: alice.ID, Text: "doomed", CreatedAt: now}
	require.NoError(t, repo.CreatePost(post))
	keeper := &models.Post{UserID: alice.ID, Text: "keeper", CreatedAt: now}
	require.NoError(t, repo.CreatePost(keeper))

	comment := &models.Comment{PostID: post.ID, UserID: bob.ID, Text: "hi", CreatedAt: now}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&models.CommentLike{CommentID: comment.ID, UserID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Notification{RecipientID: alice.ID, ActorID: bob.ID, Verb: models.VerbLike, PostID: post.ID, CreatedAt: now}).Error)

	require.NoError(t, repo.DeletePost(post.ID))

	assert.EqualValues(t, 0, tableCount(t, db, &models.Comment{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.CommentLike{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.Like{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.Notification{}))

	_, err := repo.GetPostByID(keeper.ID)
	assert.NoError(t, err)
}

func TestListDiscoverableVisibilityAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPostRepository(db)
	open := seedUser(t, db, "open")
	hermit := seedUser(t, db, "hermit")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", hermit.ID).Update("private", true).Error)
	viewer := seedUser(t, db, "viewer")
	other := seedUser(t, db, "other")

	now := time.Now()
	visible := &models.Post{UserID: open.ID, Text: "public", CreatedAt: now}
	require.NoError(t, repo.CreatePost(visible))
	hidden := &models.Post{UserID: hermit.ID, Text: "private", CreatedAt: now}
	require.NoError(t, repo.CreatePost(hidden))

	// Same user likes and comments; each dimension counts them once.
	require.NoError(t, db.Create(&models.Like{PostID: visible.ID, UserID: other.ID}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: visible.ID, UserID: viewer.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: visible.ID, UserID: other.ID, Text: "a", CreatedAt: now}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: visible.ID, UserID: other.ID, Text: "b", CreatedAt: now}).Error)

	rows, err := repo.ListDiscoverable(viewer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, visible.ID, rows[0].ID)
	assert.EqualValues(t, 2, rows[0].LikeCount)
	assert.EqualValues(t, 1, rows[0].CommenterCount)

	// The private author sees their own post.
	rows, err = repo.ListDiscoverable(hermit.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
