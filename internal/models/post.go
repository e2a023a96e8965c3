package models

import "time"

// Post represents an authored post
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Text      string    `json:"text" gorm:"size:1000"`
	ImageKey  string    `json:"image_key"` // blob store key, empty if none
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	ImageKey string `json:"image_key" validate:"omitempty,max=255"`
}

// UpdatePostRequest defines the request body for editing an existing post
type UpdatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// PostView is the API representation of a post
type PostView struct {
	ID            uint    `json:"id"`
	Username      string  `json:"username"`
	AuthorName    string  `json:"authorName"`
	AuthorPic     string  `json:"authorPic"`
	Text          string  `json:"text"`
	Image         string  `json:"image"`
	CreatedAt     string  `json:"created_at"`
	FormattedDate string  `json:"formatted_date"`
	LikeCount     int64   `json:"like_count"`
	IsLiked       bool    `json:"is_liked"`
	CommentCount  int64   `json:"comment_count"`
	IsEdited      bool    `json:"is_edited"`
	IsMine        bool    `json:"is_mine"`
	Score         float64 `json:"score,omitempty"`
}
