package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"go.uber.org/zap"
)

const (
	notificationDefaultLimit = 20
	notificationMaxLimit     = 50
)

// NotificationHandler serves the notification inbox
type NotificationHandler struct {
	engine    *services.NotificationEngine
	notifRepo repositories.NotificationRepository
	users     repositories.UserRepository
	presenter *Presenter
	log       *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(engine *services.NotificationEngine, notifRepo repositories.NotificationRepository, users repositories.UserRepository, presenter *Presenter, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{engine: engine, notifRepo: notifRepo, users: users, presenter: presenter, log: log}
}

// RegisterNotificationRoutes registers notification routes on the protected group
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.POST("/notifications/read", h.MarkRead)
}

type notificationView struct {
	ID            uint               `json:"id"`
	Actor         models.UserCompact `json:"actor"`
	Verb          string             `json:"verb"`
	PostID        uint               `json:"post_id,omitempty"`
	Read          bool               `json:"read"`
	CreatedAt     string             `json:"created_at"`
	FormattedDate string             `json:"formatted_date"`
}

// GetNotifications returns one numbered page of the caller's notifications,
// newest first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid page")
		}
	}
	limit := notificationDefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		if limit > notificationMaxLimit {
			limit = notificationMaxLimit
		}
	}

	notifications, total, err := h.notifRepo.GetByRecipientID(user.ID, page, limit)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	views := make([]notificationView, 0, len(notifications))
	actors := make(map[uint]models.UserCompact)
	for _, n := range notifications {
		actor, ok := actors[n.ActorID]
		if !ok {
			u, err := h.users.GetUserByID(n.ActorID)
			if err != nil {
				return mapServiceError(h.log, err, "")
			}
			actor = h.presenter.Users([]models.User{*u}, 0)[0]
			actors[n.ActorID] = actor
		}
		views = append(views, notificationView{
			ID:            n.ID,
			Actor:         actor,
			Verb:          n.Verb,
			PostID:        n.PostID,
			Read:          n.Read,
			CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
			FormattedDate: n.CreatedAt.Format(dateFormat),
		})
	}

	unread, err := h.notifRepo.GetUnreadCount(user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    views,
		"meta": echo.Map{
			"page":   page,
			"limit":  limit,
			"total":  total,
			"unread": unread,
		},
	})
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	count, err := h.notifRepo.GetUnreadCount(user.ID)
	if err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unread": count})
}

// MarkRead marks notifications read. The body carries either
// {"ids": "all"} or {"ids": [1, 2, 3]}; anything else is a 400.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var body struct {
		IDs json.RawMessage `json:"ids"`
	}
	if err := c.Bind(&body); err != nil || len(body.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	var all string
	if err := json.Unmarshal(body.IDs, &all); err == nil {
		if all != "all" {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		if err := h.engine.MarkAllRead(user.ID); err != nil {
			return mapServiceError(h.log, err, "")
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	var ids []uint
	if err := json.Unmarshal(body.IDs, &ids); err != nil || len(ids) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.engine.MarkRead(user.ID, ids); err != nil {
		return mapServiceError(h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
