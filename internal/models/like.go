package models

import (
	"fmt"
	"time"
)

// LikeTarget names the kind of entity a Like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Valid reports whether t is a known target kind.
func (t LikeTarget) Valid() bool {
	switch t {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// ParseLikeTarget converts a raw string into a LikeTarget.
func ParseLikeTarget(s string) (LikeTarget, error) {
	t := LikeTarget(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown like target %q", s)
	}
	return t, nil
}

// Like records that a user liked exactly one video, comment or tweet.
// At most one row exists per (user, target kind, target id).
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	LikedByID  uint       `gorm:"not null;uniqueIndex:idx_like_actor_target,priority:1" json:"likedBy"`
	TargetType LikeTarget `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_actor_target,priority:2;index:idx_like_target,priority:1" json:"targetType"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_like_actor_target,priority:3;index:idx_like_target,priority:2" json:"targetId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LikeToggleResult reports the state after a like toggle.
type LikeToggleResult struct {
	Liked bool  `json:"liked"`
	Like  *Like `json:"like"`
}
