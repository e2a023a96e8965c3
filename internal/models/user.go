package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account holder. Notification preferences are set explicitly at
// signup; a pointer-free bool with a schema default could not represent an
// explicit opt-out.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:20;uniqueIndex"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio" gorm:"size:250"`
	AvatarKey   string    `json:"avatar_key"`
	Private     bool      `json:"private"`
	Password    string    `json:"-"` // bcrypt hash
	CreatedAt   time.Time `json:"created_at"`

	NotifyFollow          bool `json:"notify_follow"`
	NotifyLike            bool `json:"notify_like"`
	NotifyComment         bool `json:"notify_comment"`
	NotifyMention         bool `json:"notify_mention"`
	NotifyRequestAccepted bool `json:"notify_request_accepted"`
}

// UserCompact is the minimal user representation embedded in posts, comments
// and notifications, and the whole of what a private profile exposes.
type UserCompact struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarKey   string `json:"avatar_key"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarKey:   u.AvatarKey,
	}
}

// PasswordReset is a pending password-reset token delivered by email.
type PasswordReset struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Token     string    `json:"-" gorm:"uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupRequest defines the request body for account creation
type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=20"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=50"`
}

// SigninRequest defines the request body for authentication
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for profile edits. Pointer
// fields distinguish "leave unchanged" from an explicit zero value.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=250"`
	AvatarKey   *string `json:"avatar_key"`
	Private     *bool   `json:"private"`

	NotifyFollow          *bool `json:"notify_follow"`
	NotifyLike            *bool `json:"notify_like"`
	NotifyComment         *bool `json:"notify_comment"`
	NotifyMention         *bool `json:"notify_mention"`
	NotifyRequestAccepted *bool `json:"notify_request_accepted"`

	NewPassword     string `json:"new_password" validate:"omitempty,min=8"`
	CurrentPassword string `json:"current_password"`
}

// PasswordResetRequestBody defines the request body for requesting reset mail
type PasswordResetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest defines the request body for completing a reset
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
