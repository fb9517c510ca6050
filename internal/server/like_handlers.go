package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleVideoLike handles POST /api/v1/likes/toggle/v/:videoId
// @Summary Like or unlike a video
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.LikeToggleResult}
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/toggle/v/{videoId} [post]
func (s *Server) ToggleVideoLike(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	result, err := s.likeService.ToggleVideoLike(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, result, likeMessage(result))
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/c/:commentId
// @Summary Like or unlike a comment
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.APIResponse{data=models.LikeToggleResult}
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/toggle/c/{commentId} [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	result, err := s.likeService.ToggleCommentLike(c.UserContext(), currentUserID(c), commentID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, result, likeMessage(result))
}

// ToggleTweetLike handles POST /api/v1/likes/toggle/t/:tweetId
// @Summary Like or unlike a tweet
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Success 200 {object} models.APIResponse{data=models.LikeToggleResult}
// @Failure 404 {object} models.ErrorResponse
// @Router /likes/toggle/t/{tweetId} [post]
func (s *Server) ToggleTweetLike(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return err
	}
	result, err := s.likeService.ToggleTweetLike(c.UserContext(), currentUserID(c), tweetID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, result, likeMessage(result))
}

// GetLikedVideos handles GET /api/v1/likes/videos
// @Summary List videos the caller liked
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.LikedVideoPage}
// @Router /likes/videos [get]
func (s *Server) GetLikedVideos(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	videos, err := s.likeService.LikedVideos(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, videos, "Liked videos fetched successfully")
}

func likeMessage(result *models.LikeToggleResult) string {
	if result.Liked {
		return "Liked successfully"
	}
	return "Unliked successfully"
}
