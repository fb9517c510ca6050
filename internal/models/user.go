// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Every user is also a channel.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:128;not null" json:"fullName"`
	Avatar       string    `gorm:"not null" json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	Password     string    `gorm:"not null" json:"-"`
	RefreshToken string    `json:"-"`
	AvatarKey    string    `json:"-"`
	CoverKey     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary projects the public fields embedded in feed records.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserSummary is the owner/subscriber projection attached to read models.
// It never carries credentials or email.
type UserSummary struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName lets summaries be selected straight from the users table.
func (UserSummary) TableName() string { return "users" }

// ChannelProfile is the public channel page read model.
type ChannelProfile struct {
	UserSummary
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
