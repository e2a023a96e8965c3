package models

import "time"

// Notification verbs. The verb is part of the debounce-delete match key, so
// these strings are stable.
const (
	VerbFollow          = "follow"
	VerbLike            = "like"
	VerbComment         = "comment"
	VerbMentionPost     = "mention_post"
	VerbMentionComment  = "mention_comment"
	VerbRequestAccepted = "request_accepted"
)

// Notification is a feed entry for a recipient. There is deliberately no
// uniqueness constraint: duplicates are prevented procedurally by the
// notification engine.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	Verb        string    `json:"verb" gorm:"size:30;index"`
	PostID      uint      `json:"post_id"` // zero when the verb has no post target
	Read        bool      `json:"read" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
