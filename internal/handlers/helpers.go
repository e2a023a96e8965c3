package handlers

import (
	"errors"
	"net/http"

	"time"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"github.com/ostrica/minigram/backend/pkg/blobstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dateFormat is the human-readable timestamp attached to posts and comments.
const dateFormat = "02/01/2006 15:04"

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no valid principal.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// currentUser loads the authenticated principal. Every operation receives
// this value explicitly, nothing reads ambient session state.
func currentUser(c echo.Context, users repositories.UserRepository) (*models.User, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	user, err := users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return user, nil
}

// canViewPost checks the viewer's grant on a post's author. A post behind a
// grant the viewer does not hold reads as not-found, never as forbidden.
func canViewPost(users repositories.UserRepository, visibility *services.Visibility, log *zap.Logger, viewerID uint, post *models.Post) error {
	author, err := users.GetUserByID(post.UserID)
	if err != nil {
		return mapServiceError(log, err, "Post not found")
	}
	grant, err := visibility.CanView(viewerID, author)
	if err != nil {
		return mapServiceError(log, err, "")
	}
	if !grant.Viewable() {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return nil
}

// mapServiceError translates the service error taxonomy into HTTP errors.
// Unexpected failures are logged with context server-side and surfaced as a
// generic 500.
func mapServiceError(log *zap.Logger, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to do that.")
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself.")
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request.")
	default:
		log.Error("unexpected failure", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// Presenter assembles API representations of posts, comments and users,
// resolving blob keys to URLs and attaching viewer-specific flags.
type Presenter struct {
	users repositories.UserRepository
	likes repositories.LikeRepository
	posts repositories.PostRepository
	blobs blobstore.BlobStore
}

// NewPresenter creates a Presenter
func NewPresenter(users repositories.UserRepository, likes repositories.LikeRepository, posts repositories.PostRepository, blobs blobstore.BlobStore) *Presenter {
	return &Presenter{users: users, likes: likes, posts: posts, blobs: blobs}
}

func (p *Presenter) authorName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Post builds the full representation of one post for the viewer.
func (p *Presenter) Post(post *models.Post, viewerID uint) (models.PostView, error) {
	author, err := p.users.GetUserByID(post.UserID)
	if err != nil {
		return models.PostView{}, err
	}
	return p.postWith(post, author, viewerID)
}

func (p *Presenter) postWith(post *models.Post, author *models.User, viewerID uint) (models.PostView, error) {
	likeCount, err := p.likes.LikeCount(post.ID)
	if err != nil {
		return models.PostView{}, err
	}
	commentCount, err := p.posts.CommentCount(post.ID)
	if err != nil {
		return models.PostView{}, err
	}
	isLiked, err := p.likes.HasUserLikedPost(post.ID, viewerID)
	if err != nil {
		return models.PostView{}, err
	}
	return models.PostView{
		ID:            post.ID,
		Username:      author.Username,
		AuthorName:    p.authorName(author),
		AuthorPic:     p.blobs.URL(author.AvatarKey),
		Text:          post.Text,
		Image:         p.blobs.URL(post.ImageKey),
		CreatedAt:     post.CreatedAt.UTC().Format(time.RFC3339),
		FormattedDate: post.CreatedAt.Format(dateFormat),
		LikeCount:     likeCount,
		IsLiked:       isLiked,
		CommentCount:  commentCount,
		IsEdited:      post.Edited,
		IsMine:        post.UserID == viewerID,
	}, nil
}

// Posts builds representations for a list of posts, caching author lookups.
func (p *Presenter) Posts(posts []models.Post, viewerID uint) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	authors := make(map[uint]*models.User)
	for i := range posts {
		author, ok := authors[posts[i].UserID]
		if !ok {
			var err error
			author, err = p.users.GetUserByID(posts[i].UserID)
			if err != nil {
				return nil, err
			}
			authors[posts[i].UserID] = author
		}
		view, err := p.postWith(&posts[i], author, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Comment builds the representation of one comment for the viewer.
func (p *Presenter) Comment(comment *models.Comment, viewerID uint) (models.CommentView, error) {
	author, err := p.users.GetUserByID(comment.UserID)
	if err != nil {
		return models.CommentView{}, err
	}
	likeCount, err := p.likes.CommentLikeCount(comment.ID)
	if err != nil {
		return models.CommentView{}, err
	}
	isLiked, err := p.likes.HasUserLikedComment(comment.ID, viewerID)
	if err != nil {
		return models.CommentView{}, err
	}
	return models.CommentView{
		ID:            comment.ID,
		PostID:        comment.PostID,
		Username:      author.Username,
		AuthorName:    p.authorName(author),
		AuthorPic:     p.blobs.URL(author.AvatarKey),
		Text:          comment.Text,
		CreatedAt:     comment.CreatedAt.UTC().Format(time.RFC3339),
		FormattedDate: comment.CreatedAt.Format(dateFormat),
		LikeCount:     likeCount,
		IsLiked:       isLiked,
		IsEdited:      comment.Edited,
		IsMine:        comment.UserID == viewerID,
	}, nil
}

// Users builds compact representations, floating the viewer to the front
// when present ("people you know first").
func (p *Presenter) Users(users []models.User, viewerID uint) []models.UserCompact {
	views := make([]models.UserCompact, 0, len(users))
	var viewer *models.UserCompact
	for i := range users {
		compact := users[i].ToCompact()
		compact.AvatarKey = p.blobs.URL(users[i].AvatarKey)
		if users[i].ID == viewerID {
			v := compact
			viewer = &v
			continue
		}
		views = append(views, compact)
	}
	if viewer != nil {
		views = append([]models.UserCompact{*viewer}, views...)
	}
	return views
}
