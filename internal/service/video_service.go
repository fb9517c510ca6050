package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vidtube/internal/featureflags"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

type VideoService struct {
	videoRepo   repository.VideoRepository
	historyRepo repository.HistoryRepository
	uploader    storage.Uploader
	flags       *featureflags.Manager
}

// ListVideosInput mirrors the feed query string after parsing.
type ListVideosInput struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortType string
	OwnerID  uint
}

type PublishVideoInput struct {
	OwnerID       uint
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput changes only the non-nil fields.
type UpdateVideoInput struct {
	UserID        uint
	VideoID       uint
	Title         *string
	Description   *string
	ThumbnailPath string
}

func NewVideoService(videoRepo repository.VideoRepository, historyRepo repository.HistoryRepository, uploader storage.Uploader) *VideoService {
	return &VideoService{videoRepo: videoRepo, historyRepo: historyRepo, uploader: uploader}
}

// WithFeatureFlags sets the flags consulted for per-viewer behavior.
func (s *VideoService) WithFeatureFlags(flags *featureflags.Manager) *VideoService {
	s.flags = flags
	return s
}

// ListVideos returns a page of the public feed.
func (s *VideoService) ListVideos(ctx context.Context, in ListVideosInput) (*models.VideoPage, error) {
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if !repository.IsVideoSortField(sortBy) {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid sortBy %q", in.SortBy),
			"sortBy must be one of createdAt, updatedAt, views, duration, title")
	}

	var desc bool
	switch strings.ToLower(in.SortType) {
	case "", "desc", "-1":
		desc = true
	case "asc", "1":
		desc = false
	default:
		return nil, models.NewValidationError(fmt.Sprintf("Invalid sortType %q", in.SortType),
			"sortType must be asc, desc, 1 or -1")
	}

	return s.videoRepo.ListPublished(ctx, repository.VideoListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Query:      strings.TrimSpace(in.Query),
		SortBy:     sortBy,
		Descending: desc,
		OwnerID:    in.OwnerID,
	})
}

// PublishVideo uploads the media and creates an unpublished video.
func (s *VideoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validateVideoText(title, description); err != nil {
		discardTemp(in.VideoPath, in.ThumbnailPath)
		return nil, err
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		discardTemp(in.VideoPath, in.ThumbnailPath)
		return nil, models.NewValidationError("Video file and thumbnail are required")
	}

	media, err := s.uploader.Upload(ctx, in.VideoPath, storage.KindVideo)
	if err != nil {
		discardTemp(in.ThumbnailPath)
		return nil, err
	}
	thumb, err := s.uploader.Upload(ctx, in.ThumbnailPath, storage.KindThumbnail)
	if err != nil {
		deleteObjects(ctx, s.uploader, media.Key)
		return nil, err
	}

	video := &models.Video{
		Title:        title,
		Description:  description,
		VideoFile:    media.URL,
		VideoKey:     media.Key,
		Thumbnail:    thumb.URL,
		ThumbnailKey: thumb.Key,
		Duration:     media.Duration,
		OwnerID:      in.OwnerID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		deleteObjects(ctx, s.uploader, media.Key, thumb.Key)
		return nil, err
	}
	return video, nil
}

// GetVideo returns a visible video and records the view.
func (s *VideoService) GetVideo(ctx context.Context, videoID, requesterID uint) (*models.VideoDetail, error) {
	video, err := s.visibleVideo(ctx, videoID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := s.videoRepo.IncrementViews(ctx, video.ID); err != nil {
		return nil, err
	}
	video.Views++

	if requesterID != 0 && s.flags.Enabled(featureflags.WatchHistory, requesterID) {
		if err := s.historyRepo.Record(ctx, requesterID, video.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record watch history",
				slog.Uint64("video_id", uint64(video.ID)), slog.String("error", err.Error()))
		}
	}
	return s.videoRepo.Detail(ctx, video, requesterID)
}

func (s *VideoService) UpdateVideo(ctx context.Context, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, in.VideoID, in.UserID)
	if err != nil {
		discardTemp(in.ThumbnailPath)
		return nil, err
	}

	title, description := video.Title, video.Description
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		description = strings.TrimSpace(*in.Description)
	}
	if err := validateVideoText(title, description); err != nil {
		discardTemp(in.ThumbnailPath)
		return nil, err
	}
	video.Title, video.Description = title, description

	var oldThumbKey string
	if in.ThumbnailPath != "" {
		thumb, err := s.uploader.Upload(ctx, in.ThumbnailPath, storage.KindThumbnail)
		if err != nil {
			return nil, err
		}
		oldThumbKey = video.ThumbnailKey
		video.Thumbnail, video.ThumbnailKey = thumb.URL, thumb.Key
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if in.ThumbnailPath != "" {
			deleteObjects(ctx, s.uploader, video.ThumbnailKey)
		}
		return nil, err
	}
	deleteObjects(ctx, s.uploader, oldThumbKey)
	return video, nil
}

// DeleteVideo removes the video with everything hanging off it, then its stored media.
func (s *VideoService) DeleteVideo(ctx context.Context, userID, videoID uint) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.videoRepo.Delete(ctx, video.ID); err != nil {
		return nil, err
	}
	deleteObjects(ctx, s.uploader, video.VideoKey, video.ThumbnailKey)
	return video, nil
}

func (s *VideoService) TogglePublish(ctx context.Context, userID, videoID uint) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	video.IsPublished = !video.IsPublished
	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// visibleVideo loads a video, hiding unpublished videos from everyone but the owner.
func (s *VideoService) visibleVideo(ctx context.Context, videoID, requesterID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	return video, nil
}

func (s *VideoService) ownedVideo(ctx context.Context, videoID, userID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You can only modify your own videos")
	}
	return video, nil
}

func validateVideoText(title, description string) error {
	if title == "" || description == "" {
		return models.NewValidationError("Title and description are required")
	}
	if len([]rune(title)) > maxTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if len([]rune(description)) > maxDescriptionLen {
		return models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxDescriptionLen))
	}
	return nil
}
