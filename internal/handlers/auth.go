package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/pkg/mailer"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	mail           mailer.Mailer
	log            *zap.Logger
	jwtSecret      string
	frontendURL    string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, mail mailer.Mailer, log *zap.Logger, jwtSecret, frontendURL string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		mail:           mail,
		log:            log,
		jwtSecret:      jwtSecret,
		frontendURL:    frontendURL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/password-reset", h.PasswordResetRequest)
	g.POST("/password-reset/confirm", h.PasswordResetConfirm)
}

// Signup handles account creation with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    string(hashedPassword),
		CreatedAt:   time.Now(),

		NotifyFollow:          true,
		NotifyLike:            true,
		NotifyComment:         true,
		NotifyMention:         true,
		NotifyRequestAccepted: true,
	}

	if err := h.userRepository.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "Username or email already registered")
		}
		return mapServiceError(h.log, err, "")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}

// SignIn handles authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// PasswordResetRequest mails a reset link when the address is registered.
// The response is 204 either way so the endpoint does not reveal which
// addresses exist.
func (h *AuthHandler) PasswordResetRequest(c echo.Context) error {
	var req models.PasswordResetRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := h.userRepository.CreatePasswordReset(reset); err != nil {
		return mapServiceError(h.log, err, "")
	}

	to := user.Email
	resetURL := fmt.Sprintf("%s/reset-password/%s", h.frontendURL, reset.Token)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		body := fmt.Sprintf("Use the link below to reset your password:\n%s", resetURL)
		if err := h.mail.Send(ctx, to, "Password reset", body); err != nil {
			h.log.Warn("password reset mail failed", zap.Error(err))
		}
	}()

	return c.NoContent(http.StatusNoContent)
}

// PasswordResetConfirm consumes a reset token and sets the new password
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req models.PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reset, err := h.userRepository.GetPasswordReset(req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}
	if time.Now().After(reset.ExpiresAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}

	user, err := h.userRepository.GetUserByID(reset.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user.Password = string(hashedPassword)
	if err := h.userRepository.UpdateUser(user); err != nil {
		return mapServiceError(h.log, err, "")
	}
	if err := h.userRepository.DeletePasswordResetsForUser(user.ID); err != nil {
		return mapServiceError(h.log, err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "username": user.Username})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
