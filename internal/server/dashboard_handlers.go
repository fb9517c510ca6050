package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetChannelStats handles GET /api/v1/dashboard/stats
// @Summary Aggregate stats for the caller's channel
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.ChannelStats}
// @Router /dashboard/stats [get]
func (s *Server) GetChannelStats(c *fiber.Ctx) error {
	stats, err := s.dashboardService.ChannelStats(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, stats, "Channel stats fetched successfully")
}

// GetChannelVideos handles GET /api/v1/dashboard/videos
// @Summary The caller's videos, published or not
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.ChannelVideoPage}
// @Router /dashboard/videos [get]
func (s *Server) GetChannelVideos(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	videos, err := s.dashboardService.ChannelVideos(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, videos, "Channel videos fetched successfully")
}
