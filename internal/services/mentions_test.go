package services

import (
	"testing"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHandles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no mentions here", nil},
		{"single", "hello @alice", []string{"alice"}},
		{"duplicate collapsed", "hi @alice and @alice", []string{"alice"}},
		{"order of first appearance", "@bob then @alice then @bob", []string{"bob", "alice"}},
		{"bare at sign skipped", "weird @ token", nil},
		{"case sensitive", "@Alice and @alice", []string{"Alice", "alice"}},
		{"mid-word at not a mention", "mail me at x@example.com", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHandles(tt.text))
		})
	}
}

func TestMentionInPostNotifies(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)

	_, err := svc.CreatePost(alice, "hello @bob", "")
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbMentionPost))
}

func TestMentionDeduplicated(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)

	_, err := svc.CreatePost(alice, "hi @bob and @bob", "")
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbMentionPost))
}

func TestMentionSelfSkipped(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)

	_, err := svc.CreatePost(alice, "note to @alice", "")
	require.NoError(t, err)

	assert.EqualValues(t, 0, countNotifications(t, db, alice.ID, ""))
}

func TestMentionUnresolvedHandleSkipped(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)

	_, err := svc.CreatePost(alice, "hello @nobody", "")
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestMentionPrefOffSkipped(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	bob.NotifyMention = false
	require.NoError(t, db.Save(bob).Error)

	_, err := svc.CreatePost(alice, "hello @bob", "")
	require.NoError(t, err)

	assert.EqualValues(t, 0, countNotifications(t, db, bob.ID, ""))
}

func TestMentionPrivateNonFollowedSkipped(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", true)

	_, err := svc.CreatePost(alice, "hello @bob", "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, countNotifications(t, db, bob.ID, ""))

	// With the author following the private account the mention goes through.
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)
	_, err = svc.CreatePost(alice, "again @bob", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbMentionPost))
}

func TestMentionInCommentUsesCommentVerb(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	post := newTestPost(t, db, alice, "hello")

	_, err := svc.CreateComment(alice, post.ID, "cc @bob")
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbMentionComment))
}

func TestEditPostRescansMentions(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)

	post, err := svc.CreatePost(alice, "hello @bob", "")
	require.NoError(t, err)

	// The edit re-runs the scan over the full new text, so an unchanged
	// mention notifies again.
	edited, err := svc.EditPost(alice, post.ID, "hello again @bob")
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.EqualValues(t, 2, countNotifications(t, db, bob.ID, models.VerbMentionPost))
}

func TestCommentNotifiesPostOwner(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	post := newTestPost(t, db, bob, "hello")

	_, err := svc.CreateComment(alice, post.ID, "nice one")
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbComment))

	// Commenting on your own post does not notify.
	_, err = svc.CreateComment(bob, post.ID, "thanks")
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotifications(t, db, bob.ID, models.VerbComment))
}

func TestEditForbiddenForNonAuthor(t *testing.T) {
	db := newTestDB(t)
	engine := newEngine(db)
	svc := NewPostService(db, engine, NewMentionScanner())
	alice := newTestUser(t, db, "alice", false)
	bob := newTestUser(t, db, "bob", false)
	post := newTestPost(t, db, bob, "hello")

	_, err := svc.EditPost(alice, post.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)

	comment, err := svc.CreateComment(bob, post.ID, "mine")
	require.NoError(t, err)
	_, err = svc.EditComment(alice, comment.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)
}
