package models

import "time"

// Video is an uploaded media item owned by a channel.
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	VideoFile    string    `gorm:"not null" json:"videoFile"`
	Thumbnail    string    `gorm:"not null" json:"thumbnail"`
	Duration     float64   `gorm:"not null;default:0" json:"duration"`
	Views        int64     `gorm:"not null;default:0" json:"views"`
	OwnerID      uint      `gorm:"not null;index" json:"ownerId"`
	IsPublished  bool      `gorm:"not null;default:false;index" json:"isPublished"`
	VideoKey     string    `json:"-"`
	ThumbnailKey string    `json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the video.
func (v *Video) IsOwnedBy(userID uint) bool {
	return userID != 0 && v.OwnerID == userID
}

// VisibleTo reports whether the video may be shown to userID (0 for anonymous).
func (v *Video) VisibleTo(userID uint) bool {
	return v.IsPublished || v.IsOwnedBy(userID)
}

// VideoFeedItem is one record of a paginated video listing.
type VideoFeedItem struct {
	Video
	Owner UserSummary `json:"owner"`
}

// VideoPage is a page of videos plus the pre-pagination total.
type VideoPage struct {
	Videos     []VideoFeedItem `json:"videos"`
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

// VideoDetail is the single-video read model.
type VideoDetail struct {
	Video
	Owner            UserSummary `json:"owner"`
	LikeCount        int64       `json:"likeCount"`
	IsLiked          bool        `json:"isLiked"`
	SubscribersCount int64       `json:"subscribersCount"`
	IsSubscribed     bool        `json:"isSubscribed"`
}

// ChannelVideo is a dashboard row with engagement counts.
type ChannelVideo struct {
	Video
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

// ChannelVideoPage is a page of the owner's dashboard listing.
type ChannelVideoPage struct {
	Videos     []ChannelVideo `json:"videos"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

// ChannelStats aggregates a channel's lifetime numbers.
type ChannelStats struct {
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalComments    int64 `json:"totalComments"`
}
