package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content" form:"content"`
}

// GetVideoComments handles GET /api/v1/comments/:videoId
// @Summary List comments on a video
// @Tags comments
// @Produce json
// @Param videoId path int true "Video ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.CommentPage}
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{videoId} [get]
func (s *Server) GetVideoComments(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(c.UserContext(), videoID, currentUserID(c), page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, comments, "Comments fetched successfully")
}

// AddComment handles POST /api/v1/comments/:videoId
// @Summary Comment on a video
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.APIResponse{data=models.CommentView}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments/{videoId} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	comment, err := s.commentService.AddComment(c.UserContext(), currentUserID(c), videoID, req.Content)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, comment, "Comment added successfully")
}

// UpdateComment handles PATCH /api/v1/comments/c/:commentId
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.APIResponse{data=models.CommentView}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/c/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), currentUserID(c), commentID, req.Content)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, comment, "Comment updated successfully")
}

// DeleteComment handles DELETE /api/v1/comments/c/:commentId
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/c/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), commentID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"commentId": commentID}, "Comment deleted successfully")
}
