package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/pagination"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostAt(t *testing.T, db *gorm.DB, author *models.User, text string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID, Text: text, CreatedAt: createdAt}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestScore(t *testing.T) {
	now := time.Now()
	row := repositories.DiscoverRow{CreatedAt: now.Add(-220 * time.Minute), LikeCount: 1}
	assert.InDelta(t, -120, Score(row, now), 0.001)

	row = repositories.DiscoverRow{CreatedAt: now.Add(-10 * time.Minute), LikeCount: 2, CommenterCount: 1}
	assert.InDelta(t, 290, Score(row, now), 0.001)
}

func TestDiscoverRanking(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	now := time.Now()
	feed.SetNow(func() time.Time { return now })

	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	carol := newTestUser(t, db, "carol", false)
	viewer := newTestUser(t, db, "viewer", false)

	// One like, 220 minutes old: 100 - 220 = -120.
	p1 := newPostAt(t, db, alice, "old post", now.Add(-220*time.Minute))
	require.NoError(t, db.Create(&models.Like{PostID: p1.ID, UserID: bob.ID}).Error)

	// Two likers and one commenter, 10 minutes old: 200 + 100 - 10 = 290.
	p2 := newPostAt(t, db, alice, "fresh post", now.Add(-10*time.Minute))
	require.NoError(t, db.Create(&models.Like{PostID: p2.ID, UserID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: p2.ID, UserID: carol.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: p2.ID, UserID: bob.ID, Text: "hi", CreatedAt: now}).Error)

	page, next, err := feed.Page(viewer.ID, "", pagination.DiscoverPageSize)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Empty(t, next)

	assert.Equal(t, p2.ID, page[0].ID)
	assert.InDelta(t, 290, page[0].Score, 0.001)
	assert.Equal(t, p1.ID, page[1].ID)
	assert.InDelta(t, -120, page[1].Score, 0.001)
}

func TestDiscoverCountsDistinctEngagers(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	now := time.Now()
	feed.SetNow(func() time.Time { return now })

	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	viewer := newTestUser(t, db, "viewer", false)

	post := newPostAt(t, db, alice, "busy thread", now)
	// Three comments from the same user count once.
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: bob.ID, Text: fmt.Sprintf("c%d", i), CreatedAt: now}).Error)
	}

	page, _, err := feed.Page(viewer.ID, "", pagination.DiscoverPageSize)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.EqualValues(t, 1, page[0].CommenterCount)
	assert.InDelta(t, 100, page[0].Score, 0.001)
}

func TestDiscoverCursorContinuation(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	now := time.Now()
	feed.SetNow(func() time.Time { return now })

	alice := newTestUser(t, db, "alice", false)
	viewer := newTestUser(t, db, "viewer", false)

	want := make(map[uint]bool)
	for i := 0; i < 7; i++ {
		p := newPostAt(t, db, alice, fmt.Sprintf("post %d", i), now.Add(-time.Duration(i*15)*time.Minute))
		want[p.ID] = true
	}

	seen := make(map[uint]bool)
	cursor := ""
	pages := 0
	for {
		page, next, err := feed.Page(viewer.ID, cursor, 3)
		require.NoError(t, err)
		for _, sp := range page {
			assert.False(t, seen[sp.ID], "post %d served twice", sp.ID)
			seen[sp.ID] = true
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, want, seen)
}

func TestDiscoverTieBreakByID(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	now := time.Now()
	feed.SetNow(func() time.Time { return now })

	alice := newTestUser(t, db, "alice", false)
	viewer := newTestUser(t, db, "viewer", false)

	// Identical creation time, no engagement: equal scores across the board.
	var ids []uint
	for i := 0; i < 4; i++ {
		p := newPostAt(t, db, alice, fmt.Sprintf("tied %d", i), now.Add(-time.Hour))
		ids = append(ids, p.ID)
	}

	first, next, err := feed.Page(viewer.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, ids[3], first[0].ID)
	assert.Equal(t, ids[2], first[1].ID)

	second, next, err := feed.Page(viewer.ID, next, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, next)
	assert.Equal(t, ids[1], second[0].ID)
	assert.Equal(t, ids[0], second[1].ID)
}

func TestDiscoverVisibility(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	now := time.Now()
	feed.SetNow(func() time.Time { return now })

	open := newTestUser(t, db, "open", false)
	hermit := newTestUser(t, db, "hermit", true)
	viewer := newTestUser(t, db, "viewer", false)

	public := newPostAt(t, db, open, "public", now)
	hidden := newPostAt(t, db, hermit, "private", now)
	own := newPostAt(t, db, viewer, "mine", now)

	page, _, err := feed.Page(viewer.ID, "", pagination.DiscoverPageSize)
	require.NoError(t, err)
	got := make(map[uint]bool)
	for _, sp := range page {
		got[sp.ID] = true
	}
	assert.True(t, got[public.ID])
	assert.True(t, got[own.ID])
	assert.False(t, got[hidden.ID])

	// Following the private author brings their posts in.
	require.NoError(t, db.Create(&models.Follow{FollowerID: viewer.ID, FolloweeID: hermit.ID}).Error)
	page, _, err = feed.Page(viewer.ID, "", pagination.DiscoverPageSize)
	require.NoError(t, err)
	got = make(map[uint]bool)
	for _, sp := range page {
		got[sp.ID] = true
	}
	assert.True(t, got[hidden.ID])
}

func TestDiscoverBadCursor(t *testing.T) {
	db := newTestDB(t)
	feed := NewDiscoverFeed(repositories.NewPostgresPostRepository(db))
	viewer := newTestUser(t, db, "viewer", false)

	_, _, err := feed.Page(viewer.ID, "not-a-cursor", pagination.DiscoverPageSize)
	assert.ErrorIs(t, err, ErrValidation)
}
