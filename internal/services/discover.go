package services

import (
	"sort"
	"time"

	"github.com/ostrica/minigram/backend/internal/pagination"
	"github.com/ostrica/minigram/backend/internal/repositories"
)

// ScoredPost is a discoverable post with its ranking score at query time.
type ScoredPost struct {
	repositories.DiscoverRow
	Score float64
}

// DiscoverFeed ranks posts by a decaying engagement score computed at query
// time:
//
//	score = 100*distinct_likers + 100*distinct_commenters - age_minutes
//
// The ordering key is (score desc, id desc); the id breaks ties
// deterministically and anchors the cursor. Because the score depends on
// "now", this feed is not a stable snapshot: a later page request ranks
// against a later clock, and items from an earlier page can drop below the
// cursor. The cursor carries the last-seen (score, id) tuple rather than an
// offset so concurrent clock advance never duplicates or skips items within
// one consistent read.
type DiscoverFeed struct {
	posts repositories.PostRepository
	now   func() time.Time
}

// NewDiscoverFeed creates a DiscoverFeed
func NewDiscoverFeed(posts repositories.PostRepository) *DiscoverFeed {
	return &DiscoverFeed{posts: posts, now: time.Now}
}

// SetNow overrides the clock for tests.
func (f *DiscoverFeed) SetNow(now func() time.Time) {
	f.now = now
}

// Score computes the ranking score of one row at the given instant.
func Score(row repositories.DiscoverRow, now time.Time) float64 {
	age := now.Sub(row.CreatedAt).Minutes()
	return 100*float64(row.LikeCount) + 100*float64(row.CommenterCount) - age
}

// Page returns one cursor page of the ranked feed for the viewer, plus the
// cursor for the next page (empty when this is the last page).
func (f *DiscoverFeed) Page(viewerID uint, cursor string, limit int) ([]ScoredPost, string, error) {
	afterScore, afterID, hasCursor, err := pagination.DecodeScore(cursor)
	if err != nil {
		return nil, "", ErrValidation
	}
	if limit <= 0 {
		limit = pagination.DiscoverPageSize
	}

	rows, err := f.posts.ListDiscoverable(viewerID)
	if err != nil {
		return nil, "", err
	}

	now := f.now()
	scored := make([]ScoredPost, 0, len(rows))
	for _, row := range rows {
		sp := ScoredPost{DiscoverRow: row, Score: Score(row, now)}
		if hasCursor && !after(sp, afterScore, afterID) {
			continue
		}
		scored = append(scored, sp)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID > scored[j].ID
	})

	next := ""
	if len(scored) > limit {
		scored = scored[:limit]
		last := scored[limit-1]
		next = pagination.EncodeScore(last.Score, last.ID)
	}
	return scored, next, nil
}

// after reports whether sp sorts strictly after the cursor tuple.
func after(sp ScoredPost, score float64, id uint) bool {
	if sp.Score != score {
		return sp.Score < score
	}
	return sp.ID < id
}
