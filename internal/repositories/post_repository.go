package repositories

import (
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"gorm.io/gorm"
)

// DiscoverRow is a post with the distinct engagement counts the discover
// ranking is computed from.
type DiscoverRow struct {
	ID             uint
	UserID         uint
	Text           string
	ImageKey       string
	Edited         bool
	CreatedAt      time.Time
	LikeCount      int64
	CommenterCount int64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
	ListByUser(userID uint, beforeID uint, limit int) ([]models.Post, error)
	ListFeed(userIDs []uint, beforeID uint, limit int) ([]models.Post, error)
	ListDiscoverable(viewerID uint) ([]DiscoverRow, error)
	CommentCount(postID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost removes a post together with its comments, likes and the
// notifications that reference it.
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ListByUser returns a user's posts newest first, starting after the cursor.
func (r *PostgresPostRepository) ListByUser(userID uint, beforeID uint, limit int) ([]models.Post, error) {
	q := r.db.Where("user_id = ?", userID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var posts []models.Post
	err := q.Order("id DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// ListFeed returns posts authored by any of the given users, newest first.
func (r *PostgresPostRepository) ListFeed(userIDs []uint, beforeID uint, limit int) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	q := r.db.Where("user_id IN ?", userIDs)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var posts []models.Post
	err := q.Order("id DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// ListDiscoverable returns every post the viewer may see, with distinct
// liker and commenter counts. Posts of private authors are included only for
// the author and their followers. The correlated COUNT(DISTINCT ...)
// subqueries run unchanged on postgres and sqlite.
func (r *PostgresPostRepository) ListDiscoverable(viewerID uint) ([]DiscoverRow, error) {
	var rows []DiscoverRow
	err := r.db.Model(&models.Post{}).
		Select(`posts.id, posts.user_id, posts.text, posts.image_key, posts.edited, posts.created_at,
			(SELECT COUNT(DISTINCT user_id) FROM likes WHERE likes.post_id = posts.id) AS like_count,
			(SELECT COUNT(DISTINCT user_id) FROM comments WHERE comments.post_id = posts.id) AS commenter_count`).
		Where(`posts.user_id = ?
			OR posts.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)
			OR posts.user_id IN (SELECT id FROM users WHERE private = ?)`,
			viewerID, viewerID, false).
		Scan(&rows).Error
	return rows, err
}

func (r *PostgresPostRepository) CommentCount(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
