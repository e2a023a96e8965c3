package repositories

import (
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkRead(recipientID uint, ids []uint) error
	MarkAllRead(recipientID uint) error
	DeleteRecent(recipientID, actorID uint, verb string, postID uint, since time.Time) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed
// by PostgreSQL
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByRecipientID returns one numbered page, reverse chronological, plus
// the total row count.
func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkRead flips the read flag on the given rows, scoped to the recipient so
// one user cannot mark another's notifications.
func (r *postgresNotificationRepository) MarkRead(recipientID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ? AND read = ?", recipientID, ids, false).
		Update("read", true).Error
}

func (r *postgresNotificationRepository) MarkAllRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}

// DeleteRecent deletes at most one notification matching the full
// (recipient, actor, verb, post) key created at or after since. The newest
// match goes first so a re-toggle cancels the row it just created.
func (r *postgresNotificationRepository) DeleteRecent(recipientID, actorID uint, verb string, postID uint, since time.Time) error {
	var n models.Notification
	err := r.db.Where(
		"recipient_id = ? AND actor_id = ? AND verb = ? AND post_id = ? AND created_at >= ?",
		recipientID, actorID, verb, postID, since,
	).Order("created_at DESC, id DESC").First(&n).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.db.Delete(&models.Notification{}, n.ID).Error
}
