package services

import (
	"errors"
	"strings"

	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"gorm.io/gorm"
)

// MentionScanner extracts @handle tokens from post and comment text and
// turns them into mention notifications, subject to the visibility policy
// and the mentioned user's preferences. Edits re-run the scan in full, which
// may re-notify users mentioned before the edit.
type MentionScanner struct{}

// NewMentionScanner creates a MentionScanner
func NewMentionScanner() *MentionScanner {
	return &MentionScanner{}
}

// ExtractHandles returns the de-duplicated handles mentioned in text, in
// order of first appearance. Matching is whitespace-tokenized and
// case-sensitive; no fuzzy resolution.
func ExtractHandles(text string) []string {
	var handles []string
	seen := make(map[string]bool)
	for _, token := range strings.Fields(text) {
		if !strings.HasPrefix(token, "@") {
			continue
		}
		handle := strings.TrimPrefix(token, "@")
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true
		handles = append(handles, handle)
	}
	return handles
}

// Scan resolves the handles in text and emits one mention notification per
// resolved user, inside the caller's transaction; notifs must be the
// caller's transaction-scoped engine. Skipped: the author themselves, users
// with mention notifications disabled, and private users the author does not
// follow (a mention must not leak into a private account's feed from a
// stranger).
func (m *MentionScanner) Scan(tx *gorm.DB, notifs *NotificationEngine, text string, author *models.User, verb string, postID uint) error {
	users := repositories.NewPostgresUserRepository(tx)
	follows := repositories.NewPostgresFollowRepository(tx)

	for _, handle := range ExtractHandles(text) {
		mentioned, err := users.GetUserByUsername(handle)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if mentioned.ID == author.ID || !mentioned.NotifyMention {
			continue
		}
		if mentioned.Private {
			follower, err := follows.HasEdge(author.ID, mentioned.ID)
			if err != nil {
				return err
			}
			if !follower {
				continue
			}
		}
		if err := notifs.Create(mentioned, author.ID, verb, postID); err != nil {
			return err
		}
	}
	return nil
}
