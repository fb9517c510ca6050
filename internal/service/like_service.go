package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	publisher   ActivityPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	tweetRepo repository.TweetRepository,
	publisher ActivityPublisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
		publisher:   publisher,
	}
}

// ToggleVideoLike likes or unlikes a video the user can see.
func (s *LikeService) ToggleVideoLike(ctx context.Context, userID, videoID uint) (*models.LikeToggleResult, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(userID) {
		return nil, models.NewNotFoundError("Video", videoID)
	}

	result, err := s.likeRepo.Toggle(ctx, userID, models.LikeTargetVideo, video.ID)
	if err != nil {
		return nil, err
	}
	if result.Liked {
		notify(ctx, s.publisher, video.OwnerID, userID, notifications.EventVideoLiked, map[string]any{
			"videoId": video.ID,
			"title":   video.Title,
		})
	}
	return result, nil
}

// ToggleCommentLike likes or unlikes a comment. Comments on videos the user
// cannot see are reported as missing.
func (s *LikeService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (*models.LikeToggleResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	video, err := s.videoRepo.GetByID(ctx, comment.VideoID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	if !video.VisibleTo(userID) {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return s.likeRepo.Toggle(ctx, userID, models.LikeTargetComment, commentID)
}

func (s *LikeService) ToggleTweetLike(ctx context.Context, userID, tweetID uint) (*models.LikeToggleResult, error) {
	if _, err := s.tweetRepo.GetByID(ctx, tweetID); err != nil {
		return nil, err
	}
	return s.likeRepo.Toggle(ctx, userID, models.LikeTargetTweet, tweetID)
}

func (s *LikeService) LikedVideos(ctx context.Context, userID uint, page, limit int) (*models.LikedVideoPage, error) {
	videos, total, err := s.likeRepo.ListLikedVideos(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return &models.LikedVideoPage{Videos: videos, TotalCount: total, Page: page, Limit: limit}, nil
}
