package models

import "time"

// MaxTweetLength bounds tweet content after trimming.
const MaxTweetLength = 280

// Tweet is a short text post on a channel's community tab.
type Tweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// IsOwnedBy reports whether userID posted the tweet.
func (t *Tweet) IsOwnedBy(userID uint) bool {
	return userID != 0 && t.OwnerID == userID
}

// TweetView is a tweet with its like total. Scanned directly from SQL.
type TweetView struct {
	ID         uint      `json:"id"`
	Content    string    `json:"content"`
	OwnerID    uint      `json:"ownerId"`
	TotalLikes int64     `json:"totalLikes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TweetAuthor is the profile block attached to a tweet feed.
type TweetAuthor struct {
	UserSummary
	IsTweetOwner bool `json:"isTweetOwner"`
}

// TweetFeed is a user's tweets plus who wrote them.
type TweetFeed struct {
	Tweets     []TweetView `json:"tweets"`
	TweetedBy  TweetAuthor `json:"tweetedBy"`
	TotalCount int64       `json:"totalCount"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}
