package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/pkg/mailer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DebounceWindow bounds the debounce-delete rule: a reversal within this
// window removes the notification its action created; outside it the row is
// kept because the recipient has likely already seen it.
const DebounceWindow = time.Hour

// mailJob is one deferred notification email.
type mailJob struct {
	to   string
	verb string
}

// NotificationEngine creates and suppresses notification rows in reaction to
// social actions. Suppression is the best-effort time-windowed
// debounce-delete, not a transactional undo log.
type NotificationEngine struct {
	db   *gorm.DB
	mail mailer.Mailer
	log  *zap.Logger
	now  func() time.Time

	// outbox holds emails for rows written inside an open transaction. Set
	// only on WithTx copies; mail must not leave before the transaction
	// commits, so a rollback discards the jobs along with the rows.
	outbox *[]mailJob
}

// NewNotificationEngine creates a NotificationEngine
func NewNotificationEngine(db *gorm.DB, mail mailer.Mailer, log *zap.Logger) *NotificationEngine {
	return &NotificationEngine{db: db, mail: mail, log: log, now: time.Now}
}

// WithTx returns a copy of the engine whose writes join the transaction and
// whose emails are held until Flush.
func (e *NotificationEngine) WithTx(tx *gorm.DB) *NotificationEngine {
	return &NotificationEngine{db: tx, mail: e.mail, log: e.log, now: e.now, outbox: &[]mailJob{}}
}

// SetNow overrides the clock, for tests that move across the debounce window.
func (e *NotificationEngine) SetNow(now func() time.Time) {
	e.now = now
}

// Create inserts a notification for the recipient and queues best-effort
// email delivery. On a WithTx copy the email waits in the outbox until the
// caller flushes after commit; a rollback drops it unsent.
func (e *NotificationEngine) Create(recipient *models.User, actorID uint, verb string, postID uint) error {
	n := &models.Notification{
		RecipientID: recipient.ID,
		ActorID:     actorID,
		Verb:        verb,
		PostID:      postID,
		CreatedAt:   e.now(),
	}
	if err := repositories.NewPostgresNotificationRepository(e.db).CreateNotification(n); err != nil {
		return err
	}
	if e.outbox != nil {
		*e.outbox = append(*e.outbox, mailJob{to: recipient.Email, verb: verb})
		return nil
	}
	e.sendMailAsync(recipient.Email, verb)
	return nil
}

// Flush sends the emails queued during the transaction. Call it only after
// the transaction has committed; the sends never block and their failures
// never affect the committed operation.
func (e *NotificationEngine) Flush() {
	if e == nil || e.outbox == nil {
		return
	}
	jobs := *e.outbox
	*e.outbox = nil
	for _, job := range jobs {
		e.sendMailAsync(job.to, job.verb)
	}
}

// DeleteRecent cancels at most one matching notification created within the
// debounce window. No-op when nothing matches.
func (e *NotificationEngine) DeleteRecent(recipientID, actorID uint, verb string, postID uint) error {
	since := e.now().Add(-DebounceWindow)
	return repositories.NewPostgresNotificationRepository(e.db).DeleteRecent(recipientID, actorID, verb, postID, since)
}

// MarkRead flips the read flag on the recipient's listed notifications.
func (e *NotificationEngine) MarkRead(recipientID uint, ids []uint) error {
	return repositories.NewPostgresNotificationRepository(e.db).MarkRead(recipientID, ids)
}

// MarkAllRead flips the read flag on all of the recipient's notifications.
func (e *NotificationEngine) MarkAllRead(recipientID uint) error {
	return repositories.NewPostgresNotificationRepository(e.db).MarkAllRead(recipientID)
}

var mailSubjects = map[string]string{
	models.VerbFollow:          "You have a new follower",
	models.VerbLike:            "Someone liked your post",
	models.VerbComment:         "New comment on your post",
	models.VerbMentionPost:     "You were mentioned in a post",
	models.VerbMentionComment:  "You were mentioned in a comment",
	models.VerbRequestAccepted: "Your follow request was accepted",
}

func (e *NotificationEngine) sendMailAsync(to, verb string) {
	if e.mail == nil || to == "" {
		return
	}
	subject, ok := mailSubjects[verb]
	if !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		body := fmt.Sprintf("%s\n\nOpen the app to see what happened.", subject)
		if err := e.mail.Send(ctx, to, subject, body); err != nil {
			e.log.Warn("notification mail failed", zap.String("verb", verb), zap.Error(err))
		}
	}()
}
