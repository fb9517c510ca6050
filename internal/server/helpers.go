package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPage          = 10000
)

// parseID extracts a route parameter as a positive id.
// "videoId" reports "Invalid video ID", "id" reports "Invalid ID".
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		var b strings.Builder
		for i, r := range prefix {
			if i > 0 && r >= 'A' && r <= 'Z' {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
		}
		return strings.ToLower(b.String()) + " ID"
	}
	return param
}

// parsePagination reads page and limit. Malformed or non-positive values are
// rejected; oversized ones are clamped.
func parsePagination(c *fiber.Ctx, defaultLimit int) (page, limit int, err error) {
	page, err = queryPositiveInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryPositiveInt(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if page > maxPage {
		page = maxPage
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, nil
}

func queryPositiveInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, models.NewValidationError(fmt.Sprintf("Invalid %s", key), key+" must be a positive integer")
	}
	return n, nil
}

// saveUpload stores the multipart file in the upload temp dir and returns its
// path, or "" when the field is absent. Ownership of the file passes to the
// service layer, which removes it.
func (s *Server) saveUpload(c *fiber.Ctx, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	maxBytes := int64(s.config.UploadMaxSizeMB) * 1024 * 1024
	if fh.Size > maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("%s exceeds the %d MB upload limit", field, s.config.UploadMaxSizeMB))
	}

	dir := s.config.UploadTempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", models.NewInternalError(fmt.Errorf("create upload dir: %w", err))
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, path); err != nil {
		return "", models.NewInternalError(fmt.Errorf("save upload: %w", err))
	}
	return path, nil
}

// saveUploads saves every named field, removing already saved files if one fails.
func (s *Server) saveUploads(c *fiber.Ctx, fields ...string) ([]string, error) {
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		path, err := s.saveUpload(c, field)
		if err != nil {
			removeFiles(paths...)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			middleware.Logger.Warn("failed to remove temp upload", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}

func (s *Server) setSessionCookies(c *fiber.Ctx, session *service.Session) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     accessCookie,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  now.Add(s.config.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    session.RefreshToken,
		Path:     "/",
		Expires:  now.Add(s.config.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookies(c *fiber.Ctx) {
	for _, name := range []string{accessCookie, refreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   s.config.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
