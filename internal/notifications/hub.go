package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"vidtube/internal/middleware"
	"vidtube/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	// ErrServerFull is returned when the process holds maxTotalConns sockets.
	ErrServerFull = errors.New("server connection limit reached")
	// ErrUserFull is returned when one user holds maxConnsPerUser sockets.
	ErrUserFull = errors.New("user connection limit reached")
	// ErrHubClosed is returned by Register after Shutdown.
	ErrHubClosed = errors.New("hub is shut down")
)

// Hub maps userID to that user's open activity stream connections.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send queue. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnections.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// ConnectionCount returns the number of open connections for userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring forwards every activity message from Redis to the recipient's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartActivitySubscriber(ctx, func(channel, payload string) {
		userID, err := parseActivityChannel(channel)
		if err != nil {
			middleware.Logger.Warn("invalid activity channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(userID, []byte(payload))
	})
}

func parseActivityChannel(channel string) (uint, error) {
	if !strings.HasPrefix(channel, "activity:user:") {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	var userID uint
	if _, err := fmt.Sscanf(channel, "activity:user:%d", &userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// Shutdown closes every send queue, which makes each write pump send a
// going-away frame and close its socket. New registrations are rejected.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
