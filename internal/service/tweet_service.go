package service

import (
	"context"
	"fmt"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

const defaultTweetLimit = 20

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
}

func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository) *TweetService {
	return &TweetService{tweetRepo: tweetRepo, userRepo: userRepo}
}

func (s *TweetService) CreateTweet(ctx context.Context, userID uint, content string) (*models.Tweet, error) {
	content, err := normalizeTweet(content)
	if err != nil {
		return nil, err
	}
	tweet := &models.Tweet{Content: content, OwnerID: userID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// ListUserTweets returns a user's tweets newest-edit first. limit 0 means the default.
func (s *TweetService) ListUserTweets(ctx context.Context, userID, requesterID uint, page, limit int) (*models.TweetFeed, error) {
	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultTweetLimit
	}
	return s.tweetRepo.ListByOwner(ctx, owner, requesterID, page, limit)
}

func (s *TweetService) UpdateTweet(ctx context.Context, userID, tweetID uint, content string) (*models.Tweet, error) {
	content, err := normalizeTweet(content)
	if err != nil {
		return nil, err
	}
	tweet, err := s.ownedTweet(ctx, userID, tweetID)
	if err != nil {
		return nil, err
	}
	tweet.Content = content
	if err := s.tweetRepo.Update(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) DeleteTweet(ctx context.Context, userID, tweetID uint) error {
	tweet, err := s.ownedTweet(ctx, userID, tweetID)
	if err != nil {
		return err
	}
	return s.tweetRepo.Delete(ctx, tweet.ID)
}

func (s *TweetService) ownedTweet(ctx context.Context, userID, tweetID uint) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if !tweet.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You can only modify your own tweets")
	}
	return tweet, nil
}

func normalizeTweet(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Tweet content is required")
	}
	if len([]rune(content)) > models.MaxTweetLength {
		return "", models.NewValidationError(fmt.Sprintf("Tweet too long (max %d characters)", models.MaxTweetLength))
	}
	return content, nil
}
