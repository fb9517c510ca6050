package service

import (
	"context"
	"fmt"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
)

const maxCommentLength = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	publisher   ActivityPublisher
}

func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository, publisher ActivityPublisher) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo, publisher: publisher}
}

// ListComments returns a page of comments on a video the requester can see.
func (s *CommentService) ListComments(ctx context.Context, videoID, requesterID uint, page, limit int) (*models.CommentPage, error) {
	if _, err := s.visibleVideo(ctx, videoID, requesterID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByVideo(ctx, videoID, requesterID, page, limit)
}

func (s *CommentService) AddComment(ctx context.Context, userID, videoID uint, content string) (*models.CommentView, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	video, err := s.visibleVideo(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, VideoID: video.ID, OwnerID: userID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	notify(ctx, s.publisher, video.OwnerID, userID, notifications.EventCommentCreated, map[string]any{
		"videoId":   video.ID,
		"commentId": comment.ID,
		"content":   comment.Content,
	})

	return s.commentRepo.View(ctx, comment, userID)
}

func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.CommentView, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.View(ctx, comment, userID)
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !comment.IsOwnedBy(userID) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *CommentService) visibleVideo(ctx context.Context, videoID, requesterID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	return video, nil
}

func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Comment content is required")
	}
	if len([]rune(content)) > maxCommentLength {
		return "", models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLength))
	}
	return content, nil
}
