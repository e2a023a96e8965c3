package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// searchLimit caps username search results, ordered by follower count
const searchLimit = 7

// UserHandler handles profile reads and writes
type UserHandler struct {
	users      repositories.UserRepository
	follows    repositories.FollowRepository
	visibility *services.Visibility
	presenter  *Presenter
	log        *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository, follows repositories.FollowRepository, visibility *services.Visibility, presenter *Presenter, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, follows: follows, visibility: visibility, presenter: presenter, log: log}
}

// RegisterUserRoutes registers user-related routes on the protected group
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.Me)
	g.PATCH("/users/me", h.UpdateProfile)
	g.DELETE("/users/me", h.DeleteAccount)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:username", h.GetProfile)
	g.GET("/users/:username/followers", h.Followers)
	g.GET("/users/:username/following", h.Following)
}

type profileView struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio"`
	AvatarPic      string `json:"avatar_pic"`
	Private        bool   `json:"private"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	PostCount      int64  `json:"post_count"`
	IsFollowing    bool   `json:"is_following"`
	IsRequested    bool   `json:"is_requested"`
	IsMine         bool   `json:"is_mine"`
}

func (h *UserHandler) buildProfile(subject *models.User, viewerID uint) (profileView, error) {
	followerCount, err := h.follows.FollowerCount(subject.ID)
	if err != nil {
		return profileView{}, err
	}
	followingCount, err := h.follows.FollowingCount(subject.ID)
	if err != nil {
		return profileView{}, err
	}
	postCount, err := h.users.CountPosts(subject.ID)
	if err != nil {
		return profileView{}, err
	}
	isFollowing, err := h.follows.HasEdge(viewerID, subject.ID)
	if err != nil {
		return profileView{}, err
	}
	isRequested := false
	if !isFollowing && subject.ID != viewerID {
		if _, err := h.follows.GetRequestByPair(viewerID, subject.ID); err == nil {
			isRequested = true
		}
	}
	name := subject.DisplayName
	if name == "" {
		name = subject.Username
	}
	return profileView{
		ID:             subject.ID,
		Username:       subject.Username,
		DisplayName:    name,
		Bio:            subject.Bio,
		AvatarPic:      h.presenter.blobs.URL(subject.AvatarKey),
		Private:        subject.Private,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		PostCount:      postCount,
		IsFollowing:    isFollowing,
		IsRequested:    isRequested,
		IsMine:         subject.ID == viewerID,
	}, nil
}

// Me returns the caller's own profile including notification preferences
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	profile, err := h.buildProfile(user, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    profile,
		"preferences": echo.Map{
			"notify_follow":           user.NotifyFollow,
			"notify_like":             user.NotifyLike,
			"notify_comment":          user.NotifyComment,
			"notify_mention":          user.NotifyMention,
			"notify_request_accepted": user.NotifyRequestAccepted,
		},
	})
}

// GetProfile returns another user's profile. Profile metadata is visible to
// everyone; the Private flag tells callers whether the post list is gated.
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	subject, err := h.users.GetUserByUsername(c.Param("username"))
	if err != nil {
		return mapServiceError(h.log, err, "User not found")
	}

	profile, err := h.buildProfile(subject, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// UpdateProfile applies a partial update to the caller's profile. Pointer
// fields distinguish "not sent" from an explicit zero value, so flipping a
// preference to false works.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarKey != nil {
		user.AvatarKey = *req.AvatarKey
	}
	if req.Private != nil {
		user.Private = *req.Private
	}
	if req.NotifyFollow != nil {
		user.NotifyFollow = *req.NotifyFollow
	}
	if req.NotifyLike != nil {
		user.NotifyLike = *req.NotifyLike
	}
	if req.NotifyComment != nil {
		user.NotifyComment = *req.NotifyComment
	}
	if req.NotifyMention != nil {
		user.NotifyMention = *req.NotifyMention
	}
	if req.NotifyRequestAccepted != nil {
		user.NotifyRequestAccepted = *req.NotifyRequestAccepted
	}

	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashed)
	}

	if err := h.users.UpdateUser(user); err != nil {
		return mapServiceError(h.log, err, "")
	}

	profile, err := h.buildProfile(user, user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// DeleteAccount removes the caller's account and everything attached to it
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(user.ID); err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SearchUsers finds users by username prefix, most-followed first
func (h *UserHandler) SearchUsers(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": []models.UserCompact{}})
	}

	found, err := h.users.SearchUsers(query, searchLimit)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.presenter.Users(found, user.ID)})
}

// followList guards follower/following listings: private accounts expose
// them only to followers and to the owner.
func (h *UserHandler) followList(c echo.Context, list func(uint) ([]models.User, error)) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	subject, err := h.users.GetUserByUsername(c.Param("username"))
	if err != nil {
		return mapServiceError(h.log, err, "User not found")
	}

	grant, err := h.visibility.CanView(user.ID, subject)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	if !grant.Viewable() {
		return echo.NewHTTPError(http.StatusForbidden, "This account is private.")
	}

	members, err := list(subject.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": h.presenter.Users(members, user.ID)})
}

// Followers lists a user's followers
func (h *UserHandler) Followers(c echo.Context) error {
	return h.followList(c, h.follows.ListFollowers)
}

// Following lists the users a user follows
func (h *UserHandler) Following(c echo.Context) error {
	return h.followList(c, h.follows.ListFollowing)
}
