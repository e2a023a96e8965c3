package services

import (
	"errors"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"gorm.io/gorm"
)

// LikeService toggles likes on posts and comments. Post like/unlike drives
// the notification engine; comment likes carry no notification verb.
type LikeService struct {
	db     *gorm.DB
	notifs *NotificationEngine
	now    func() time.Time
}

// NewLikeService creates a LikeService
func NewLikeService(db *gorm.DB, notifs *NotificationEngine) *LikeService {
	return &LikeService{db: db, notifs: notifs, now: time.Now}
}

// SetNow overrides the clock for tests.
func (s *LikeService) SetNow(now func() time.Time) {
	s.now = now
	s.notifs.SetNow(now)
}

// visiblePost loads a post and its author and checks the liker's grant. A
// post the liker may not view reads as not-found, the same answer a single
// post read gives.
func visiblePost(tx *gorm.DB, viewerID, postID uint) (*models.Post, *models.User, error) {
	post, err := repositories.NewPostgresPostRepository(tx).GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	owner, err := repositories.NewPostgresUserRepository(tx).GetUserByID(post.UserID)
	if err != nil {
		return nil, nil, err
	}
	grant, err := NewVisibility(repositories.NewPostgresFollowRepository(tx)).CanView(viewerID, owner)
	if err != nil {
		return nil, nil, err
	}
	if !grant.Viewable() {
		return nil, nil, ErrNotFound
	}
	return post, owner, nil
}

// TogglePostLike flips the liker's like on a post the liker may view. Liking
// notifies the post owner (preference permitting); unliking debounce-deletes
// that notification.
func (s *LikeService) TogglePostLike(liker *models.User, postID uint) (bool, error) {
	var liked bool
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		likes := repositories.NewPostgresLikeRepository(tx)

		post, owner, err := visiblePost(tx, liker.ID, postID)
		if err != nil {
			return err
		}

		removed, err := likes.DeleteLike(postID, liker.ID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return notifs.DeleteRecent(post.UserID, liker.ID, models.VerbLike, postID)
		}

		liked = true
		err = likes.CreateLike(&models.Like{PostID: postID, UserID: liker.ID, CreatedAt: s.now()})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		if err != nil {
			return err
		}
		if post.UserID == liker.ID {
			return nil
		}
		if owner.NotifyLike {
			return notifs.Create(owner, liker.ID, models.VerbLike, postID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	notifs.Flush()
	return liked, nil
}

// ToggleCommentLike flips the liker's like on a comment under a post the
// liker may view.
func (s *LikeService) ToggleCommentLike(liker *models.User, commentID uint) (bool, error) {
	var liked bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		comments := repositories.NewPostgresCommentRepository(tx)
		likes := repositories.NewPostgresLikeRepository(tx)

		comment, err := comments.GetCommentByID(commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, _, err := visiblePost(tx, liker.ID, comment.PostID); err != nil {
			return err
		}

		removed, err := likes.DeleteCommentLike(commentID, liker.ID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return nil
		}

		liked = true
		err = likes.CreateCommentLike(&models.CommentLike{CommentID: commentID, UserID: liker.ID, CreatedAt: s.now()})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
