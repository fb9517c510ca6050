package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository toggles subscriptions and serves both listings.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID uint) (*models.SubscriptionToggleResult, error)
	ListSubscribers(ctx context.Context, channelID uint, page, limit int) (*models.SubscriberList, error)
	ListSubscribedChannels(ctx context.Context, subscriberID uint, page, limit int) (*models.SubscribedChannelList, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Toggle follows the same delete-else-insert protocol as likes.
func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uint) (*models.SubscriptionToggleResult, error) {
	db := r.db.WithContext(ctx)

	res := db.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		observability.ToggleOutcomes.WithLabelValues("subscription", "removed").Inc()
		return &models.SubscriptionToggleResult{Subscribed: false}, nil
	}

	sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.ToggleOutcomes.WithLabelValues("subscription", "conflict").Inc()
		return nil, models.NewConflictError("Subscription was toggled concurrently, retry")
	}
	observability.ToggleOutcomes.WithLabelValues("subscription", "added").Inc()
	return &models.SubscriptionToggleResult{Subscribed: true, Subscription: sub}, nil
}

// ListSubscribers returns the channel's subscribers, newest first. The count
// covers all subscribers regardless of the page.
func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID uint, page, limit int) (list *models.SubscriberList, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListSubscribers", "subscriptions")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_subscribers", "subscriptions")()

	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("channel_id = ?", channelID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var subs []models.Subscription
	if err := db.Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.SubscriberID)
	}
	users, err := userSummaries(db, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	entries := make([]models.SubscriberEntry, 0, len(subs))
	for _, s := range subs {
		entries = append(entries, models.SubscriberEntry{
			ID:           s.ID,
			Subscriber:   users[s.SubscriberID],
			SubscribedAt: s.CreatedAt,
		})
	}
	return &models.SubscriberList{Subscribers: entries, SubscribersCount: total, Page: page, Limit: limit}, nil
}

// ListSubscribedChannels returns the channels the user follows, newest first.
func (r *subscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID uint, page, limit int) (list *models.SubscribedChannelList, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListSubscribedChannels", "subscriptions")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_subscribed_channels", "subscriptions")()

	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var subs []models.Subscription
	if err := db.Where("subscriber_id = ?", subscriberID).
		Order("created_at DESC, id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ChannelID)
	}
	channels, err := userSummaries(db, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	entries := make([]models.ChannelEntry, 0, len(subs))
	for _, s := range subs {
		entries = append(entries, models.ChannelEntry{
			ID:           s.ID,
			Channel:      channels[s.ChannelID],
			SubscribedAt: s.CreatedAt,
		})
	}
	return &models.SubscribedChannelList{Channels: entries, ChannelsCount: total, Page: page, Limit: limit}, nil
}
