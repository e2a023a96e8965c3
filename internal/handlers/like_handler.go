package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
)

// LikeHandler handles post like toggles and liker listings
type LikeHandler struct {
	likes      *services.LikeService
	likeRepo   repositories.LikeRepository
	postRepo   repositories.PostRepository
	users      repositories.UserRepository
	visibility *services.Visibility
	presenter  *Presenter
	log        *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService, likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, users repositories.UserRepository, visibility *services.Visibility, presenter *Presenter, log *zap.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, likeRepo: likeRepo, postRepo: postRepo, users: users, visibility: visibility, presenter: presenter, log: log}
}

// RegisterLikeRoutes registers like-related routes on the protected group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/posts/:id/likers", h.Likers)
}

// ToggleLike flips the caller's like on a post
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	liked, err := h.likes.TogglePostLike(user, uint(postID))
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "liked": liked})
}

// Likers lists the users who liked a post, most-followed first with the
// viewer floated to the front.
func (h *LikeHandler) Likers(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepo.GetPostByID(uint(postID))
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}
	if err := canViewPost(h.users, h.visibility, h.log, user.ID, post); err != nil {
		return err
	}

	likers, err := h.likeRepo.ListLikers(post.ID)
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.presenter.Users(likers, user.ID)})
}
