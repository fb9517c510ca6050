package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

// DashboardService reports on the authenticated user's own channel.
type DashboardService struct {
	videoRepo repository.VideoRepository
}

func NewDashboardService(videoRepo repository.VideoRepository) *DashboardService {
	return &DashboardService{videoRepo: videoRepo}
}

func (s *DashboardService) ChannelStats(ctx context.Context, userID uint) (*models.ChannelStats, error) {
	return s.videoRepo.ChannelStats(ctx, userID)
}

// ChannelVideos lists published and unpublished videos alike.
func (s *DashboardService) ChannelVideos(ctx context.Context, userID uint, page, limit int) (*models.ChannelVideoPage, error) {
	return s.videoRepo.ListByOwner(ctx, userID, page, limit)
}
