package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultTweetPageLimit = 20

type tweetRequest struct {
	Content string `json:"content" form:"content"`
}

// CreateTweet handles POST /api/v1/tweets
// @Summary Post a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string} true "Tweet"
// @Success 201 {object} models.APIResponse{data=models.Tweet}
// @Failure 400 {object} models.ErrorResponse
// @Router /tweets [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req tweetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	tweet, err := s.tweetService.CreateTweet(c.UserContext(), currentUserID(c), req.Content)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, tweet, "Tweet created successfully")
}

// GetUserTweets handles GET /api/v1/tweets/user/:userId
// @Summary List a user's tweets
// @Tags tweets
// @Produce json
// @Param userId path int true "User ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.APIResponse{data=models.TweetFeed}
// @Failure 404 {object} models.ErrorResponse
// @Router /tweets/user/{userId} [get]
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	page, limit, err := parsePagination(c, defaultTweetPageLimit)
	if err != nil {
		return err
	}
	feed, err := s.tweetService.ListUserTweets(c.UserContext(), userID, currentUserID(c), page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, feed, "Tweets fetched successfully")
}

// UpdateTweet handles PATCH /api/v1/tweets/:tweetId
// @Summary Edit a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Param request body object{content=string} true "Tweet"
// @Success 200 {object} models.APIResponse{data=models.Tweet}
// @Failure 403 {object} models.ErrorResponse
// @Router /tweets/{tweetId} [patch]
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return err
	}
	var req tweetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	tweet, err := s.tweetService.UpdateTweet(c.UserContext(), currentUserID(c), tweetID, req.Content)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, tweet, "Tweet updated successfully")
}

// DeleteTweet handles DELETE /api/v1/tweets/:tweetId
// @Summary Delete a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /tweets/{tweetId} [delete]
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return err
	}
	if err := s.tweetService.DeleteTweet(c.UserContext(), currentUserID(c), tweetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"tweetId": tweetID}, "Tweet deleted successfully")
}
