// Package pagination implements the opaque cursors shared by the list
// endpoints. A cursor encodes the ordering-key tuple of the last item on the
// previous page; the next page starts strictly after it. Offsets are never
// used because the discover ordering shifts as time advances.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Page sizes per feed, matching the read patterns of each listing.
const (
	FeedPageSize     = 5
	DiscoverPageSize = 5
	CommentPageSize  = 10
)

// ErrBadCursor is returned for cursors that did not come from this server.
var ErrBadCursor = errors.New("invalid cursor")

type idCursor struct {
	ID uint `json:"id"`
}

type scoreCursor struct {
	Score float64 `json:"score"`
	ID    uint    `json:"id"`
}

func encode(v any) string {
	b, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(s string, v any) error {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ErrBadCursor
	}
	if err := json.Unmarshal(b, v); err != nil {
		return ErrBadCursor
	}
	return nil
}

// EncodeID builds a cursor for id-desc ordered listings.
func EncodeID(id uint) string {
	return encode(idCursor{ID: id})
}

// DecodeID returns the last-seen id, or 0 for an empty cursor.
func DecodeID(s string) (uint, error) {
	if s == "" {
		return 0, nil
	}
	var c idCursor
	if err := decode(s, &c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// EncodeScore builds a cursor for the (score desc, id desc) discover ordering.
func EncodeScore(score float64, id uint) string {
	return encode(scoreCursor{Score: score, ID: id})
}

// DecodeScore returns the last-seen (score, id) tuple. ok is false for an
// empty cursor, meaning the first page.
func DecodeScore(s string) (score float64, id uint, ok bool, err error) {
	if s == "" {
		return 0, 0, false, nil
	}
	var c scoreCursor
	if err := decode(s, &c); err != nil {
		return 0, 0, false, err
	}
	return c.Score, c.ID, true, nil
}
