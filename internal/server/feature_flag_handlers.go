package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/v1/features
// @Summary Feature flags
// @Description Configured flag values and their evaluation for the caller
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	}, "Feature flags fetched successfully")
}

// requireFeature hides a route from callers the flag is off for.
func (s *Server) requireFeature(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, currentUserID(c)) {
			return fiber.ErrNotFound
		}
		return c.Next()
	}
}
