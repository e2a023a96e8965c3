package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/pkg/blobstore"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single image upload at 5 MiB
const maxUploadBytes = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler accepts image uploads and hands back blob keys to attach to
// posts or profiles.
type UploadHandler struct {
	blobs blobstore.BlobStore
	users repositories.UserRepository
	log   *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(blobs blobstore.BlobStore, users repositories.UserRepository, log *zap.Logger) *UploadHandler {
	return &UploadHandler{blobs: blobs, users: users, log: log}
}

// RegisterUploadRoutes registers upload routes on the protected group
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
}

// Upload stores one multipart image. The "kind" form field selects the key
// namespace: "profile" or "post" (the default).
func (h *UploadHandler) Upload(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing image file")
	}
	if fileHeader.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image exceeds the 5MB limit")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported image type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable image file")
	}
	defer src.Close()

	var key string
	switch c.FormValue("kind") {
	case "profile":
		key = blobstore.ProfileKey(user.ID, fileHeader.Filename)
	default:
		key = blobstore.PostKey(user.ID, fileHeader.Filename)
	}

	if err := h.blobs.Put(c.Request().Context(), key, fileHeader.Header.Get("Content-Type"), src); err != nil {
		h.log.Error("blob upload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "key": key, "url": h.blobs.URL(key)})
}
