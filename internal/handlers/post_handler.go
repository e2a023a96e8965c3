package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/pagination"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
)

// PostHandler handles post CRUD
type PostHandler struct {
	posts      *services.PostService
	postRepo   repositories.PostRepository
	users      repositories.UserRepository
	visibility *services.Visibility
	presenter  *Presenter
	log        *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, postRepo repositories.PostRepository, users repositories.UserRepository, visibility *services.Visibility, presenter *Presenter, log *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, postRepo: postRepo, users: users, visibility: visibility, presenter: presenter, log: log}
}

// RegisterPostRoutes registers post-related routes on the protected group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.EditPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:username/posts", h.GetPostsByUsername)
}

// CreatePost creates a post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(user, req.Text, req.ImageKey)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	view, err := h.presenter.Post(post, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": view})
}

// GetPost returns one post if the author is visible to the caller
func (h *PostHandler) GetPost(c echo.Context) error {
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

	author, err := h.users.GetUserByID(post.UserID)
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}
	grant, err := h.visibility.CanView(user.ID, author)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	if !grant.Viewable() {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	view, err := h.presenter.postWith(post, author, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": view})
}

// EditPost rewrites a post's text. Only the author may edit, and the edit
// re-runs the mention scan on the new text.
func (h *PostHandler) EditPost(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.posts.EditPost(user, uint(postID), req.Text)
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}

	view, err := h.presenter.Post(post, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": view})
}

// DeletePost removes a post and everything hanging off it
func (h *PostHandler) DeletePost(c echo.Context) error {
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
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to do that.")
	}

	if err := h.postRepo.DeletePost(post.ID); err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetPostsByUsername lists a user's posts newest-first with a cursor, subject
// to the author's visibility.
func (h *PostHandler) GetPostsByUsername(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	author, err := h.users.GetUserByUsername(c.Param("username"))
	if err != nil {
		return mapServiceError(h.log, err, "User not found")
	}
	grant, err := h.visibility.CanView(user.ID, author)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	if !grant.Viewable() {
		return echo.NewHTTPError(http.StatusForbidden, "This account is private.")
	}

	beforeID, err := pagination.DecodeID(c.QueryParam("cursor"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	}

	posts, err := h.postRepo.ListByUser(author.ID, beforeID, pagination.FeedPageSize)
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
