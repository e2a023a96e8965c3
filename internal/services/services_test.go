package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Notification{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string, private bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Private:     private,
		CreatedAt:   time.Now(),

		NotifyFollow:          true,
		NotifyLike:            true,
		NotifyComment:         true,
		NotifyMention:         true,
		NotifyRequestAccepted: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newEngine(db *gorm.DB) *NotificationEngine {
	return NewNotificationEngine(db, nil, zap.NewNop())
}

// recordingMailer captures recipients instead of delivering; sends arrive
// from goroutines, so access is mutex-guarded.
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func countNotifications(t *testing.T, db *gorm.DB, recipientID uint, verb string) int64 {
	t.Helper()
	var count int64
	q := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if verb != "" {
		q = q.Where("verb = ?", verb)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

func hasEdge(t *testing.T, db *gorm.DB, followerID, followeeID uint) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error)
	return count > 0
}
