package server

import (
	"log/slog"

	"vidtube/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ActivityStreamHandler streams the caller's activity events (likes, comments,
// new subscribers) as JSON text frames.
// @Summary Activity stream
// @Description Websocket upgrade; each frame is a notifications.Event
// @Tags realtime
// @Security BearerAuth
// @Success 101
// @Failure 426 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) ActivityStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"activity stream unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("activity stream registration rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("activity stream connected", slog.Uint64("user_id", uint64(userID)))
		go client.WritePump()
		client.ReadPump()
	})
}
