package repositories

import (
	"testing"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	require.NoError(t, repo.CreateUser(&models.User{Username: "alice", Email: "a@example.com"}))

	err := repo.CreateUser(&models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDeleteUserCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	doomed := seedUser(t, db, "doomed")
	bystander := seedUser(t, db, "bystander")

	now := time.Now()

	// Doomed's post with a bystander comment, like and comment like.
	post := &models.Post{UserID: doomed.ID, Text: "goodbye", CreatedAt: now}
	require.NoError(t, db.Create(post).Error)
	comment := &models.Comment{PostID: post.ID, UserID: bystander.ID, Text: "bye", CreatedAt: now}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: bystander.ID}).Error)
	require.NoError(t, db.Create(&models.CommentLike{CommentID: comment.ID, UserID: doomed.ID}).Error)

	// Bystander's post that doomed engaged with; this content must survive.
	otherPost := &models.Post{UserID: bystander.ID, Text: "staying", CreatedAt: now}
	require.NoError(t, db.Create(otherPost).Error)
	doomedComment := &models.Comment{PostID: otherPost.ID, UserID: doomed.ID, Text: "nice", CreatedAt: now}
	require.NoError(t, db.Create(doomedComment).Error)
	require.NoError(t, db.Create(&models.Like{PostID: otherPost.ID, UserID: doomed.ID}).Error)

	// Relations and notifications in both directions.
	require.NoError(t, db.Create(&models.Follow{FollowerID: doomed.ID, FolloweeID: bystander.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: bystander.ID, FolloweeID: doomed.ID}).Error)
	require.NoError(t, db.Create(&models.FollowRequest{RequesterID: doomed.ID, TargetID: bystander.ID}).Error)
	require.NoError(t, db.Create(&models.Notification{RecipientID: doomed.ID, ActorID: bystander.ID, Verb: models.VerbFollow, CreatedAt: now}).Error)
	require.NoError(t, db.Create(&models.Notification{RecipientID: bystander.ID, ActorID: doomed.ID, Verb: models.VerbLike, PostID: otherPost.ID, CreatedAt: now}).Error)
	require.NoError(t, db.Create(&models.PasswordReset{UserID: doomed.ID, Token: "tok", ExpiresAt: now.Add(time.Hour), CreatedAt: now}).Error)

	require.NoError(t, repo.DeleteUser(doomed.ID))

	_, err := repo.GetUserByID(doomed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Everything referencing the deleted user is gone.
	assert.EqualValues(t, 0, tableCount(t, db, &models.Follow{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.FollowRequest{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.Notification{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.PasswordReset{}))
	assert.EqualValues(t, 0, tableCount(t, db, &models.CommentLike{}))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, bystander.ID, posts[0].UserID)

	// The bystander's post lost only the doomed user's engagement.
	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	assert.Empty(t, comments)
	assert.EqualValues(t, 0, tableCount(t, db, &models.Like{}))

	_, err = repo.GetUserByID(bystander.ID)
	assert.NoError(t, err)
}

func TestSearchUsersOrderedByFollowers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	star := seedUser(t, db, "anna_star")
	mid := seedUser(t, db, "anna_mid")
	nobody := seedUser(t, db, "anna_nobody")
	f1 := seedUser(t, db, "fan1")
	f2 := seedUser(t, db, "fan2")

	require.NoError(t, db.Create(&models.Follow{FollowerID: f1.ID, FolloweeID: star.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: f2.ID, FolloweeID: star.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: f1.ID, FolloweeID: mid.ID}).Error)

	found, err := repo.SearchUsers("anna", 7)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, star.ID, found[0].ID)
	assert.Equal(t, mid.ID, found[1].ID)
	assert.Equal(t, nobody.ID, found[2].ID)
}

func TestSearchUsersCaseInsensitiveAndLimited(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	seedUser(t, db, "Carmen")
	carl := seedUser(t, db, "carl")
	carl.DisplayName = "Carlos"
	require.NoError(t, db.Save(carl).Error)

	found, err := repo.SearchUsers("CAR", 7)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.SearchUsers("car", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestPasswordResetLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	user := seedUser(t, db, "alice")

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     "reset-token",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreatePasswordReset(reset))

	got, err := repo.GetPasswordReset("reset-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.DeletePasswordResetsForUser(user.ID))
	_, err = repo.GetPasswordReset("reset-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
