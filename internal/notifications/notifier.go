// Package notifications delivers channel activity events to connected users
// through Redis pub/sub and a websocket hub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Activity event types.
const (
	EventVideoLiked        = "video.liked"
	EventCommentCreated    = "comment.created"
	EventChannelSubscribed = "channel.subscribed"
)

const activityPattern = "activity:user:*"

// ActivityChannel returns the Redis channel carrying events for userID.
func ActivityChannel(userID uint) string {
	return fmt.Sprintf("activity:user:%d", userID)
}

// Event is the JSON document written to subscribers.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actorId"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier provides helpers to publish activity into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishActivity sends an event to the recipient's activity channel.
// A Notifier without Redis drops events silently.
func (n *Notifier) PublishActivity(ctx context.Context, recipientID, actorID uint, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(Event{
		Type:      eventType,
		ActorID:   actorID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		observability.ActivityEventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, ActivityChannel(recipientID), body).Err(); err != nil {
		observability.ActivityEventsPublished.WithLabelValues(eventType, "error").Inc()
		return err
	}
	observability.ActivityEventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// StartActivitySubscriber subscribes to every user's activity channel and
// calls onMessage for each message until ctx is cancelled.
func (n *Notifier) StartActivitySubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, activityPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", activityPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in activity subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
