package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePlaylist handles POST /api/v1/playlist
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string} true "Playlist"
// @Success 201 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Router /playlist [post]
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" form:"name"`
		Description string `json:"description" form:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	playlist, err := s.playlistService.CreatePlaylist(c.UserContext(), service.CreatePlaylistInput{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, playlist, "Playlist created successfully")
}

// GetUserPlaylists handles GET /api/v1/playlist/user/:userId
// @Summary List a user's playlists
// @Tags playlists
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.APIResponse{data=[]models.PlaylistSummary}
// @Failure 404 {object} models.ErrorResponse
// @Router /playlist/user/{userId} [get]
func (s *Server) GetUserPlaylists(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	playlists, err := s.playlistService.ListUserPlaylists(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, playlists, "Playlists fetched successfully")
}

// GetPlaylistByID handles GET /api/v1/playlist/:playlistId
// @Summary Get a playlist with its videos
// @Tags playlists
// @Produce json
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.PlaylistDetail}
// @Failure 404 {object} models.ErrorResponse
// @Router /playlist/{playlistId} [get]
func (s *Server) GetPlaylistByID(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.GetPlaylist(c.UserContext(), playlistID, currentUserID(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist fetched successfully")
}

// UpdatePlaylist handles PATCH /api/v1/playlist/:playlistId
// @Summary Rename or describe a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Param request body object{name=string,description=string} true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 403 {object} models.ErrorResponse
// @Router /playlist/{playlistId} [patch]
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}
	var req struct {
		Name        *string `json:"name" form:"name"`
		Description *string `json:"description" form:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	playlist, err := s.playlistService.UpdatePlaylist(c.UserContext(), service.UpdatePlaylistInput{
		UserID:      currentUserID(c),
		PlaylistID:  playlistID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist updated successfully")
}

// DeletePlaylist handles DELETE /api/v1/playlist/:playlistId
// @Summary Delete a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /playlist/{playlistId} [delete]
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}
	if err := s.playlistService.DeletePlaylist(c.UserContext(), currentUserID(c), playlistID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"playlistId": playlistID}, "Playlist deleted successfully")
}

// AddVideoToPlaylist handles PATCH /api/v1/playlist/add/:videoId/:playlistId
// @Summary Append a video to a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.PlaylistDetail}
// @Failure 409 {object} models.ErrorResponse
// @Router /playlist/add/{videoId}/{playlistId} [patch]
func (s *Server) AddVideoToPlaylist(c *fiber.Ctx) error {
	videoID, playlistID, err := playlistVideoParams(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.AddVideo(c.UserContext(), currentUserID(c), playlistID, videoID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video added to playlist successfully")
}

// RemoveVideoFromPlaylist handles PATCH /api/v1/playlist/remove/:videoId/:playlistId
// @Summary Remove a video from a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.PlaylistDetail}
// @Failure 404 {object} models.ErrorResponse
// @Router /playlist/remove/{videoId}/{playlistId} [patch]
func (s *Server) RemoveVideoFromPlaylist(c *fiber.Ctx) error {
	videoID, playlistID, err := playlistVideoParams(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.RemoveVideo(c.UserContext(), currentUserID(c), playlistID, videoID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video removed from playlist successfully")
}

func playlistVideoParams(c *fiber.Ctx) (videoID, playlistID uint, err error) {
	if videoID, err = parseID(c, "videoId"); err != nil {
		return 0, 0, err
	}
	if playlistID, err = parseID(c, "playlistId"); err != nil {
		return 0, 0, err
	}
	return videoID, playlistID, nil
}
