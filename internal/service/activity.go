// Package service holds the application's use cases: validation, ownership
// checks and orchestration over repositories and collaborators.
package service

import (
	"context"
	"log/slog"

	"vidtube/internal/middleware"
)

// ActivityPublisher delivers realtime activity to a user.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, recipientID, actorID uint, eventType string, payload any) error
}

// notify publishes an activity event. Delivery is best effort: failures are
// logged and never reach the caller, and users are not notified of their own actions.
func notify(ctx context.Context, pub ActivityPublisher, recipientID, actorID uint, eventType string, payload any) {
	if pub == nil || recipientID == 0 || recipientID == actorID {
		return
	}
	if err := pub.PublishActivity(ctx, recipientID, actorID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish activity",
			slog.String("event_type", eventType),
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("error", err.Error()))
	}
}
