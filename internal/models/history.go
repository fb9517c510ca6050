package models

import "time"

// WatchHistory remembers the last time a user opened a video.
type WatchHistory struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	VideoID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"videoId"`
	WatchedAt time.Time `gorm:"not null;index" json:"watchedAt"`
}

// WatchedVideo is a history row joined with the video and its owner.
type WatchedVideo struct {
	VideoFeedItem
	WatchedAt time.Time `json:"watchedAt"`
}

// LikedVideo is a liked-videos row.
type LikedVideo struct {
	VideoFeedItem
	LikedAt time.Time `json:"likedAt"`
}

// WatchHistoryPage is a page of the user's watch history.
type WatchHistoryPage struct {
	Videos     []WatchedVideo `json:"videos"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

// LikedVideoPage is a page of the user's liked videos.
type LikedVideoPage struct {
	Videos     []LikedVideo `json:"videos"`
	TotalCount int64        `json:"totalCount"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
}
