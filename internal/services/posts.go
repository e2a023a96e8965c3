package services

import (
	"errors"
	"strings"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"gorm.io/gorm"
)

// NormalizeText collapses runs of whitespace to single spaces and trims the
// ends, matching what clients see echoed back after submission.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// PostService creates and edits posts and comments, wiring in the mention
// scanner and the comment notification.
type PostService struct {
	db       *gorm.DB
	notifs   *NotificationEngine
	mentions *MentionScanner
	now      func() time.Time
}

// NewPostService creates a PostService
func NewPostService(db *gorm.DB, notifs *NotificationEngine, mentions *MentionScanner) *PostService {
	return &PostService{db: db, notifs: notifs, mentions: mentions, now: time.Now}
}

// SetNow overrides the clock for tests.
func (s *PostService) SetNow(now func() time.Time) {
	s.now = now
	s.notifs.SetNow(now)
}

// CreatePost stores a new post and scans it for mentions.
func (s *PostService) CreatePost(author *models.User, text, imageKey string) (*models.Post, error) {
	text = NormalizeText(text)
	post := &models.Post{
		UserID:    author.ID,
		Text:      text,
		ImageKey:  imageKey,
		CreatedAt: s.now(),
	}
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		if err := repositories.NewPostgresPostRepository(tx).CreatePost(post); err != nil {
			return err
		}
		return s.mentions.Scan(tx, notifs, text, author, models.VerbMentionPost, post.ID)
	})
	if err != nil {
		return nil, err
	}
	notifs.Flush()
	return post, nil
}

// EditPost replaces a post's text, marks it edited and re-runs the mention
// scan over the full new text.
func (s *PostService) EditPost(editor *models.User, postID uint, text string) (*models.Post, error) {
	text = NormalizeText(text)
	var post *models.Post
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		posts := repositories.NewPostgresPostRepository(tx)
		p, err := posts.GetPostByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.UserID != editor.ID {
			return ErrForbidden
		}
		p.Text = text
		p.Edited = true
		if err := posts.UpdatePost(p); err != nil {
			return err
		}
		post = p
		return s.mentions.Scan(tx, notifs, text, editor, models.VerbMentionPost, p.ID)
	})
	if err != nil {
		return nil, err
	}
	notifs.Flush()
	return post, nil
}

// CreateComment stores a comment, notifies the post owner and scans the text
// for mentions.
func (s *PostService) CreateComment(author *models.User, postID uint, text string) (*models.Comment, error) {
	text = NormalizeText(text)
	comment := &models.Comment{
		PostID:    postID,
		UserID:    author.ID,
		Text:      text,
		CreatedAt: s.now(),
	}
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		users := repositories.NewPostgresUserRepository(tx)
		posts := repositories.NewPostgresPostRepository(tx)

		post, err := posts.GetPostByID(postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := repositories.NewPostgresCommentRepository(tx).CreateComment(comment); err != nil {
			return err
		}
		if post.UserID != author.ID {
			owner, err := users.GetUserByID(post.UserID)
			if err != nil {
				return err
			}
			if owner.NotifyComment {
				if err := notifs.Create(owner, author.ID, models.VerbComment, postID); err != nil {
					return err
				}
			}
		}
		return s.mentions.Scan(tx, notifs, text, author, models.VerbMentionComment, postID)
	})
	if err != nil {
		return nil, err
	}
	notifs.Flush()
	return comment, nil
}

// EditComment replaces a comment's text, marks it edited and re-runs the
// mention scan.
func (s *PostService) EditComment(editor *models.User, commentID uint, text string) (*models.Comment, error) {
	text = NormalizeText(text)
	var comment *models.Comment
	var notifs *NotificationEngine
	err := s.db.Transaction(func(tx *gorm.DB) error {
		notifs = s.notifs.WithTx(tx)
		comments := repositories.NewPostgresCommentRepository(tx)
		c, err := comments.GetCommentByID(commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if c.UserID != editor.ID {
			return ErrForbidden
		}
		c.Text = text
		c.Edited = true
		if err := comments.UpdateComment(c); err != nil {
			return err
		}
		comment = c
		return s.mentions.Scan(tx, notifs, text, editor, models.VerbMentionComment, c.PostID)
	})
	if err != nil {
		return nil, err
	}
	notifs.Flush()
	return comment, nil
}
