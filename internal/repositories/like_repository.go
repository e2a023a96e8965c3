package repositories

import (
	"github.com/ostrica/minigram/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for post and comment likes
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(postID, userID uint) (bool, error)
	HasUserLikedPost(postID, userID uint) (bool, error)
	LikeCount(postID uint) (int64, error)
	ListLikers(postID uint) ([]models.User, error)

	CreateCommentLike(like *models.CommentLike) error
	DeleteCommentLike(commentID, userID uint) (bool, error)
	HasUserLikedComment(commentID, userID uint) (bool, error)
	CommentLikeCount(commentID uint) (int64, error)
	ListCommentLikers(commentID uint) ([]models.User, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike removes a like, reporting whether one existed.
func (r *PostgresLikeRepository) DeleteLike(postID, userID uint) (bool, error) {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) LikeCount(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// ListLikers returns the users who liked a post, most-followed first.
func (r *PostgresLikeRepository) ListLikers(postID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("likes").Select("user_id").Where("post_id = ?", postID),
	).Order("(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) DESC, id DESC").
		Find(&users).Error
	return users, err
}

func (r *PostgresLikeRepository) CreateCommentLike(like *models.CommentLike) error {
	return r.db.Create(like).Error
}

func (r *PostgresLikeRepository) DeleteCommentLike(commentID, userID uint) (bool, error) {
	res := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) HasUserLikedComment(commentID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CommentLike{}).Where("comment_id = ? AND user_id = ?", commentID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) CommentLikeCount(commentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}

// ListCommentLikers returns the users who liked a comment, most-followed
// first.
func (r *PostgresLikeRepository) ListCommentLikers(commentID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("comment_likes").Select("user_id").Where("comment_id = ?", commentID),
	).Order("(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) DESC, id DESC").
		Find(&users).Error
	return users, err
}
