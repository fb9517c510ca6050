package testutil

import (
	"fmt"
	"testing"
	"time"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts a user with a predictable email and avatar.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Avatar:   "https://cdn.example.com/avatars/" + username + ".webp",
		Password: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateVideo inserts a video owned by ownerID.
func CreateVideo(t *testing.T, db *gorm.DB, ownerID uint, title string, published bool) *models.Video {
	t.Helper()
	video := &models.Video{
		Title:       title,
		Description: "About " + title,
		VideoFile:   fmt.Sprintf("https://cdn.example.com/videos/%s.mp4", title),
		Thumbnail:   fmt.Sprintf("https://cdn.example.com/thumbnails/%s.webp", title),
		Duration:    60,
		OwnerID:     ownerID,
		IsPublished: published,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("create video %s: %v", title, err)
	}
	return video
}

// CreateComment inserts a comment with an explicit creation time.
func CreateComment(t *testing.T, db *gorm.DB, videoID, ownerID uint, content string, at time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{VideoID: videoID, OwnerID: ownerID, Content: content, CreatedAt: at, UpdatedAt: at}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}

// CreateLike inserts a like row directly.
func CreateLike(t *testing.T, db *gorm.DB, userID uint, target models.LikeTarget, targetID uint) *models.Like {
	t.Helper()
	like := &models.Like{LikedByID: userID, TargetType: target, TargetID: targetID}
	if err := db.Create(like).Error; err != nil {
		t.Fatalf("create like: %v", err)
	}
	return like
}

// Subscribe inserts a subscription row directly.
func Subscribe(t *testing.T, db *gorm.DB, subscriberID, channelID uint) *models.Subscription {
	t.Helper()
	sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	return sub
}
