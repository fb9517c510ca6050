package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
)

type SubscriptionService struct {
	subRepo   repository.SubscriptionRepository
	userRepo  repository.UserRepository
	publisher ActivityPublisher
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository, publisher ActivityPublisher) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo, publisher: publisher}
}

func (s *SubscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uint) (*models.SubscriptionToggleResult, error) {
	if subscriberID == channelID {
		return nil, models.NewValidationError("You cannot subscribe to your own channel")
	}
	if err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}

	result, err := s.subRepo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	if result.Subscribed {
		notify(ctx, s.publisher, channelID, subscriberID, notifications.EventChannelSubscribed, map[string]any{
			"channelId":    channelID,
			"subscriberId": subscriberID,
		})
	}
	return result, nil
}

// ListSubscribers is restricted to the channel owner.
func (s *SubscriptionService) ListSubscribers(ctx context.Context, requesterID, channelID uint, page, limit int) (*models.SubscriberList, error) {
	if requesterID != channelID {
		return nil, models.NewForbiddenError("You can only view subscribers of your own channel")
	}
	if err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}
	return s.subRepo.ListSubscribers(ctx, channelID, page, limit)
}

// ListSubscribedChannels is restricted to the subscriber themself.
func (s *SubscriptionService) ListSubscribedChannels(ctx context.Context, requesterID, subscriberID uint, page, limit int) (*models.SubscribedChannelList, error) {
	if requesterID != subscriberID {
		return nil, models.NewForbiddenError("You can only view your own subscriptions")
	}
	if err := s.requireChannel(ctx, subscriberID); err != nil {
		return nil, err
	}
	return s.subRepo.ListSubscribedChannels(ctx, subscriberID, page, limit)
}

func (s *SubscriptionService) requireChannel(ctx context.Context, id uint) error {
	exists, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Channel", id)
	}
	return nil
}
