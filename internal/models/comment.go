package models

import "time"

// Comment is a text reply attached to a video.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	VideoID   uint      `gorm:"not null;index" json:"videoId"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID wrote the comment.
func (c *Comment) IsOwnedBy(userID uint) bool {
	return userID != 0 && c.OwnerID == userID
}

// CommentView is a comment enriched for a specific requester.
type CommentView struct {
	ID               uint        `json:"id"`
	Content          string      `json:"content"`
	VideoID          uint        `json:"videoId"`
	Owner            UserSummary `json:"owner"`
	LikeCount        int64       `json:"likeCount"`
	LikedByRequester bool        `json:"likedByRequester"`
	IsOwner          bool        `json:"isOwner"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// CommentPage is a page of comment views plus the total for the video.
type CommentPage struct {
	Comments   []CommentView `json:"comments"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}
