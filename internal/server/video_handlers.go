package server

import (
	"strconv"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllVideos handles GET /api/v1/videos
// @Summary List published videos
// @Description Paginated feed with optional search, sort and owner filter
// @Tags videos
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param query query string false "Case-insensitive title/description search"
// @Param sortBy query string false "createdAt, updatedAt, views, duration or title"
// @Param sortType query string false "asc, desc, 1 or -1"
// @Param userId query int false "Owner filter"
// @Success 200 {object} models.APIResponse{data=models.VideoPage}
// @Failure 400 {object} models.ErrorResponse
// @Router /videos [get]
func (s *Server) GetAllVideos(c *fiber.Ctx) error {
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}

	var ownerID uint
	if raw := strings.TrimSpace(c.Query("userId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return models.NewValidationError("Invalid user ID")
		}
		ownerID = uint(id)
	}

	videos, err := s.videoService.ListVideos(c.UserContext(), service.ListVideosInput{
		Page:     page,
		Limit:    limit,
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		OwnerID:  ownerID,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, videos, "Videos fetched successfully")
}

// PublishVideo handles POST /api/v1/videos
// @Summary Upload a video
// @Description Upload media and thumbnail; the video starts unpublished
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 201 {object} models.APIResponse{data=models.Video}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /videos [post]
func (s *Server) PublishVideo(c *fiber.Ctx) error {
	paths, err := s.saveUploads(c, "videoFile", "thumbnail")
	if err != nil {
		return err
	}

	video, err := s.videoService.PublishVideo(c.UserContext(), service.PublishVideoInput{
		OwnerID:       currentUserID(c),
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		VideoPath:     paths[0],
		ThumbnailPath: paths[1],
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, video, "Video uploaded successfully")
}

// GetVideoByID handles GET /api/v1/videos/:videoId
// @Summary Get a video
// @Description Counts a view and records watch history for signed-in viewers
// @Tags videos
// @Produce json
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.VideoDetail}
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{videoId} [get]
func (s *Server) GetVideoByID(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.GetVideo(c.UserContext(), videoID, currentUserID(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, video, "Video fetched successfully")
}

// UpdateVideo handles PATCH /api/v1/videos/:videoId
// @Summary Update a video
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param thumbnail formData file false "New thumbnail"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 403 {object} models.ErrorResponse
// @Router /videos/{videoId} [patch]
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}

	var req struct {
		Title       *string `json:"title" form:"title"`
		Description *string `json:"description" form:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	thumbnail, err := s.saveUpload(c, "thumbnail")
	if err != nil {
		return err
	}

	video, err := s.videoService.UpdateVideo(c.UserContext(), service.UpdateVideoInput{
		UserID:        currentUserID(c),
		VideoID:       videoID,
		Title:         req.Title,
		Description:   req.Description,
		ThumbnailPath: thumbnail,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, video, "Video updated successfully")
}

// DeleteVideo handles DELETE /api/v1/videos/:videoId
// @Summary Delete a video
// @Description Removes the video with its comments, likes, playlist entries and history
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 403 {object} models.ErrorResponse
// @Router /videos/{videoId} [delete]
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.DeleteVideo(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, video, "Video deleted successfully")
}

// TogglePublishStatus handles PATCH /api/v1/videos/toggle/publish/:videoId
// @Summary Toggle publish status
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 403 {object} models.ErrorResponse
// @Router /videos/toggle/publish/{videoId} [patch]
func (s *Server) TogglePublishStatus(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.TogglePublish(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, video, "Publish status toggled successfully")
}
