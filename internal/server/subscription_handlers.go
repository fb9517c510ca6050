package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleSubscription handles POST /api/v1/subscriptions/c/:channelId
// @Summary Subscribe to or unsubscribe from a channel
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param channelId path int true "Channel (user) ID"
// @Success 200 {object} models.APIResponse{data=models.SubscriptionToggleResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /subscriptions/c/{channelId} [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return err
	}
	result, err := s.subscriptionService.ToggleSubscription(c.UserContext(), currentUserID(c), channelID)
	if err != nil {
		return err
	}
	message := "Unsubscribed successfully"
	if result.Subscribed {
		message = "Subscribed successfully"
	}
	return models.Respond(c, fiber.StatusOK, result, message)
}

// GetChannelSubscribers handles GET /api/v1/subscriptions/c/:channelId
// @Summary List a channel's subscribers
// @Description Only the channel owner may list its subscribers
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param channelId path int true "Channel (user) ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.SubscriberList}
// @Failure 403 {object} models.ErrorResponse
// @Router /subscriptions/c/{channelId} [get]
func (s *Server) GetChannelSubscribers(c *fiber.Ctx) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return err
	}
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	list, err := s.subscriptionService.ListSubscribers(c.UserContext(), currentUserID(c), channelID, page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, list, "Subscribers fetched successfully")
}

// GetSubscribedChannels handles GET /api/v1/subscriptions/u/:subscriberId
// @Summary List channels a user subscribes to
// @Description Only the subscriber may list their own subscriptions
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param subscriberId path int true "Subscriber (user) ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.APIResponse{data=models.SubscribedChannelList}
// @Failure 403 {object} models.ErrorResponse
// @Router /subscriptions/u/{subscriberId} [get]
func (s *Server) GetSubscribedChannels(c *fiber.Ctx) error {
	subscriberID, err := parseID(c, "subscriberId")
	if err != nil {
		return err
	}
	page, limit, err := parsePagination(c, defaultPageLimit)
	if err != nil {
		return err
	}
	list, err := s.subscriptionService.ListSubscribedChannels(c.UserContext(), currentUserID(c), subscriberID, page, limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, list, "Subscribed channels fetched successfully")
}
