package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
)

// FollowHandler handles follow edges and follow requests
type FollowHandler struct {
	follows   *services.FollowService
	users     repositories.UserRepository
	presenter *Presenter
	log       *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService, users repositories.UserRepository, presenter *Presenter, log *zap.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, users: users, presenter: presenter, log: log}
}

// RegisterFollowRoutes registers follow-related routes on the protected group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow", h.ToggleFollow)
	g.GET("/follow/requests", h.ListFollowRequests)
	g.POST("/follow/requests/:id", h.RespondFollowRequest)
	g.POST("/follow/requests/accept-all", h.AcceptAll)
}

// ToggleFollow flips the follow relation toward the named user. Against a
// private account the toggle creates or withdraws a pending request instead
// of an edge.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var req models.ToggleFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	outcome, err := h.follows.ToggleFollow(user, req.Username)
	if err != nil {
		return mapServiceError(h.log, err, "User not found")
	}

	resp := echo.Map{
		"success":   true,
		"following": outcome == services.OutcomeFollowed,
	}
	if outcome == services.OutcomeRequested || outcome == services.OutcomeRequestWithdrawn {
		resp["requested"] = outcome == services.OutcomeRequested
	}
	return c.JSON(http.StatusOK, resp)
}

// ListFollowRequests returns the caller's pending incoming requests, oldest
// first.
func (h *FollowHandler) ListFollowRequests(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	requests, err := h.follows.ListRequests(user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	type requestView struct {
		ID        uint               `json:"id"`
		Requester models.UserCompact `json:"requester"`
	}
	views := make([]requestView, 0, len(requests))
	for _, req := range requests {
		requester, err := h.users.GetUserByID(req.RequesterID)
		if err != nil {
			return mapServiceError(h.log, err, "")
		}
		compacts := h.presenter.Users([]models.User{*requester}, 0)
		views = append(views, requestView{ID: req.ID, Requester: compacts[0]})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views})
}

// RespondFollowRequest accepts or rejects one pending request addressed to
// the caller.
func (h *FollowHandler) RespondFollowRequest(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	var body models.RespondFollowRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	if err := h.follows.RespondRequest(user, uint(requestID), services.FollowAction(body.Action)); err != nil {
		return mapServiceError(h.log, err, "Follow request not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "accepted": body.Action == string(services.ActionAccept)})
}

// AcceptAll accepts every pending request addressed to the caller
func (h *FollowHandler) AcceptAll(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	accepted, err := h.follows.AcceptAll(user)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "accepted": accepted})
}
