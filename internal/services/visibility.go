package services

import (
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
)

// Grant is the outcome of a visibility decision.
type Grant int

const (
	// GrantPublic: the subject is public, anyone may view.
	GrantPublic Grant = iota
	// GrantFollower: the subject is private and the viewer holds a follow
	// edge (or is the subject).
	GrantFollower
	// GrantForbidden: the subject is private and the viewer has no grant.
	GrantForbidden
)

// Visibility decides whether a viewer may see a subject's guarded surfaces:
// full profile, posts, follower and following lists. It performs no writes
// and is safe for concurrent use.
type Visibility struct {
	follows repositories.FollowRepository
}

// NewVisibility creates a Visibility policy over the follow edge set
func NewVisibility(follows repositories.FollowRepository) *Visibility {
	return &Visibility{follows: follows}
}

// CanView returns the grant for (viewer, subject).
func (v *Visibility) CanView(viewerID uint, subject *models.User) (Grant, error) {
	if !subject.Private {
		return GrantPublic, nil
	}
	if viewerID == subject.ID {
		return GrantFollower, nil
	}
	ok, err := v.follows.HasEdge(viewerID, subject.ID)
	if err != nil {
		return GrantForbidden, err
	}
	if ok {
		return GrantFollower, nil
	}
	return GrantForbidden, nil
}

// Viewable reports whether the grant permits access.
func (g Grant) Viewable() bool {
	return g != GrantForbidden
}
