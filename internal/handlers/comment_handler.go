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

// CommentHandler handles comments and comment likes
type CommentHandler struct {
	posts       *services.PostService
	likes       *services.LikeService
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	likeRepo    repositories.LikeRepository
	users       repositories.UserRepository
	visibility  *services.Visibility
	presenter   *Presenter
	log         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService, likes *services.LikeService, commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, likeRepo repositories.LikeRepository, users repositories.UserRepository, visibility *services.Visibility, presenter *Presenter, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		posts:       posts,
		likes:       likes,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		users:       users,
		visibility:  visibility,
		presenter:   presenter,
		log:         log,
	}
}

// RegisterCommentRoutes registers comment-related routes on the protected group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.ListComments)
	g.POST("/comments", h.CreateComment)
	g.PUT("/comments/:id", h.EditComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.ToggleCommentLike)
	g.GET("/comments/:id/likers", h.CommentLikers)
}

// ListComments pages a post's comments newest-first with an id cursor
func (h *CommentHandler) ListComments(c echo.Context) error {
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

	beforeID, err := pagination.DecodeID(c.QueryParam("cursor"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	}

	comments, err := h.commentRepo.ListByPost(post.ID, beforeID, pagination.CommentPageSize)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		view, err := h.presenter.Comment(&comments[i], user.ID)
		if err != nil {
			return mapServiceError(h.log, err, "")
		}
		views = append(views, view)
	}

	next := ""
	if len(comments) == pagination.CommentPageSize {
		next = pagination.EncodeID(comments[len(comments)-1].ID)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views, "next_cursor": next})
}

// CreateComment adds a comment under a visible post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepo.GetPostByID(req.PostID)
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}
	if err := canViewPost(h.users, h.visibility, h.log, user.ID, post); err != nil {
		return err
	}

	comment, err := h.posts.CreateComment(user, post.ID, req.Text)
	if err != nil {
		return mapServiceError(h.log, err, "Post not found")
	}

	view, err := h.presenter.Comment(comment, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": view})
}

// EditComment rewrites a comment's text. Only the author may edit.
func (h *CommentHandler) EditComment(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.posts.EditComment(user, uint(commentID), req.Text)
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}

	view, err := h.presenter.Comment(comment, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": view})
}

// DeleteComment removes a comment. The comment's author or the post's author
// may delete.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepo.GetCommentByID(uint(commentID))
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}

	if comment.UserID != user.ID {
		post, err := h.postRepo.GetPostByID(comment.PostID)
		if err != nil {
			return mapServiceError(h.log, err, "Comment not found")
		}
		if post.UserID != user.ID {
			return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to do that.")
		}
	}

	if err := h.commentRepo.DeleteComment(comment.ID); err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ToggleCommentLike flips the caller's like on a comment
func (h *CommentHandler) ToggleCommentLike(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	liked, err := h.likes.ToggleCommentLike(user, uint(commentID))
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "liked": liked})
}

// CommentLikers lists the users who liked a comment under a visible post
func (h *CommentHandler) CommentLikers(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepo.GetCommentByID(uint(commentID))
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}
	post, err := h.postRepo.GetPostByID(comment.PostID)
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}
	if err := canViewPost(h.users, h.visibility, h.log, user.ID, post); err != nil {
		return err
	}

	likers, err := h.likeRepo.ListCommentLikers(comment.ID)
	if err != nil {
		return mapServiceError(h.log, err, "Comment not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.presenter.Users(likers, user.ID)})
}
