package repositories

import (
	"github.com/ostrica/minigram/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edges and pending
// follow requests
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followeeID uint) (bool, error)
	HasEdge(followerID, followeeID uint) (bool, error)
	ListFollowers(userID uint) ([]models.User, error)
	ListFollowing(userID uint) ([]models.User, error)
	FollowerCount(userID uint) (int64, error)
	FollowingCount(userID uint) (int64, error)
	FollowingIDs(userID uint) ([]uint, error)

	CreateRequest(req *models.FollowRequest) error
	GetRequestByID(id uint) (*models.FollowRequest, error)
	GetRequestByPair(requesterID, targetID uint) (*models.FollowRequest, error)
	DeleteRequest(id uint) error
	ListRequestsForTarget(targetID uint) ([]models.FollowRequest, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

// DeleteFollow removes an edge, reporting whether one existed.
func (r *PostgresFollowRepository) DeleteFollow(followerID, followeeID uint) (bool, error) {
	res := r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) HasEdge(followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListFollowers returns a user's followers, most-followed first.
func (r *PostgresFollowRepository) ListFollowers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("followee_id = ?", userID),
	).Order("(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) DESC, id DESC").
		Find(&users).Error
	return users, err
}

// ListFollowing returns the users someone follows, most-followed first.
func (r *PostgresFollowRepository) ListFollowing(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("followee_id").Where("follower_id = ?", userID),
	).Order("(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) DESC, id DESC").
		Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) FollowerCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) FollowingCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) CreateRequest(req *models.FollowRequest) error {
	return r.db.Create(req).Error
}

func (r *PostgresFollowRepository) GetRequestByID(id uint) (*models.FollowRequest, error) {
	var req models.FollowRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresFollowRepository) GetRequestByPair(requesterID, targetID uint) (*models.FollowRequest, error) {
	var req models.FollowRequest
	if err := r.db.Where("requester_id = ? AND target_id = ?", requesterID, targetID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresFollowRepository) DeleteRequest(id uint) error {
	return r.db.Delete(&models.FollowRequest{}, id).Error
}

// ListRequestsForTarget returns pending requests aimed at a user, oldest
// first.
func (r *PostgresFollowRepository) ListRequestsForTarget(targetID uint) ([]models.FollowRequest, error) {
	var reqs []models.FollowRequest
	err := r.db.Where("target_id = ?", targetID).Order("id ASC").Find(&reqs).Error
	return reqs, err
}
