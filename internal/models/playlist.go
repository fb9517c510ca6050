package models

import "time"

// Playlist is a named, ordered collection of videos owned by a user.
type Playlist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the playlist.
func (p *Playlist) IsOwnedBy(userID uint) bool {
	return userID != 0 && p.OwnerID == userID
}

// PlaylistVideo places a video at a position inside a playlist.
type PlaylistVideo struct {
	PlaylistID uint      `gorm:"primaryKey;autoIncrement:false" json:"playlistId"`
	VideoID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"videoId"`
	Position   int       `gorm:"not null" json:"position"`
	CreatedAt  time.Time `json:"addedAt"`
}

// PlaylistSummary is a playlist row with its size, used in per-user listings.
type PlaylistSummary struct {
	Playlist
	TotalVideos int64 `json:"totalVideos"`
}

// PlaylistDetail is a playlist with its visible videos in order.
type PlaylistDetail struct {
	Playlist
	Owner       UserSummary     `json:"owner"`
	Videos      []VideoFeedItem `json:"videos"`
	TotalVideos int             `json:"totalVideos"`
	TotalViews  int64           `json:"totalViews"`
}
