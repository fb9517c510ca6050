package server

import (
	"context"
	"strings"

	"vidtube/internal/auth"
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// AuthRequired returns the authentication middleware. The access token comes
// from the accessToken cookie or an "Authorization: Bearer" header.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := accessTokenFrom(c)
		if token == "" {
			return models.NewUnauthorizedError("Unauthorized request")
		}
		claims, err := s.tokens.VerifyAccessToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		authenticate(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the requester when a valid token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := accessTokenFrom(c); token != "" {
			if claims, err := s.tokens.VerifyAccessToken(c.UserContext(), token); err == nil {
				authenticate(c, claims)
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID))
}

func accessTokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(accessCookie); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// currentUserID returns the authenticated user, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func currentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}
