package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/pagination"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
)

// FeedHandler serves the home feed and the ranked discovery feed
type FeedHandler struct {
	discover  *services.DiscoverFeed
	postRepo  repositories.PostRepository
	follows   repositories.FollowRepository
	users     repositories.UserRepository
	presenter *Presenter
	log       *zap.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(discover *services.DiscoverFeed, postRepo repositories.PostRepository, follows repositories.FollowRepository, users repositories.UserRepository, presenter *Presenter, log *zap.Logger) *FeedHandler {
	return &FeedHandler{discover: discover, postRepo: postRepo, follows: follows, users: users, presenter: presenter, log: log}
}

// RegisterFeedRoutes registers feed routes on the protected group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/discover", h.GetDiscover)
}

// GetFeed returns the caller's home feed: own posts plus followed authors',
// newest first, paged by an id cursor.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	beforeID, err := pagination.DecodeID(c.QueryParam("cursor"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	}

	followed, err := h.follows.FollowingIDs(user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	authorIDs := append(followed, user.ID)

	posts, err := h.postRepo.ListFeed(authorIDs, beforeID, pagination.FeedPageSize)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	views, err := h.presenter.Posts(posts, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	next := ""
	if len(posts) == pagination.FeedPageSize {
		next = pagination.EncodeID(posts[len(posts)-1].ID)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views, "next_cursor": next})
}

// GetDiscover returns the ranked discovery feed. Each item carries the score
// it was ranked with so clients can continue from the returned cursor.
func (h *FeedHandler) GetDiscover(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	scored, next, err := h.discover.Page(user.ID, c.QueryParam("cursor"), pagination.DiscoverPageSize)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
		}
		return mapServiceError(h.log, err, "")
	}

	views := make([]models.PostView, 0, len(scored))
	for _, sp := range scored {
		post := models.Post{
			ID:        sp.ID,
			UserID:    sp.UserID,
			Text:      sp.Text,
			ImageKey:  sp.ImageKey,
			Edited:    sp.Edited,
			CreatedAt: sp.CreatedAt,
		}
		view, err := h.presenter.Post(&post, user.ID)
		if err != nil {
			return mapServiceError(h.log, err, "")
		}
		view.Score = sp.Score
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views, "next_cursor": next})
}
