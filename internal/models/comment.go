package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Text      string    `json:"text" gorm:"size:250"`
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID uint   `json:"post_id" validate:"required"`
	Text   string `json:"text" validate:"required,min=1,max=250"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=250"`
}

// CommentView is the API representation of a comment
type CommentView struct {
	ID            uint   `json:"id"`
	PostID        uint   `json:"post_id"`
	Username      string `json:"username"`
	AuthorName    string `json:"authorName"`
	AuthorPic     string `json:"authorPic"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	FormattedDate string `json:"formatted_date"`
	LikeCount     int64  `json:"like_count"`
	IsLiked       bool   `json:"is_liked"`
	IsEdited      bool   `json:"is_edited"`
	IsMine        bool   `json:"is_mine"`
}
