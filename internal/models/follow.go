package models

import "time"

// Follow represents a directed follower -> followee edge. The composite
// unique index is what turns concurrent double-inserts into a recoverable
// conflict instead of two edges.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_followee"`
	FolloweeID uint      `json:"followee_id" gorm:"index;uniqueIndex:idx_follower_followee"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowRequest is a pending follow edge awaiting approval by a private
// account. At most one request may exist per (requester, target) pair.
type FollowRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequesterID uint      `json:"requester_id" gorm:"index;uniqueIndex:idx_requester_target"`
	TargetID    uint      `json:"target_id" gorm:"index;uniqueIndex:idx_requester_target"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToggleFollowRequest defines the request body for the follow toggle
type ToggleFollowRequest struct {
	Username string `json:"username" validate:"required"`
}

// RespondFollowRequestBody defines the request body for accepting or
// rejecting a pending follow request
type RespondFollowRequestBody struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}
