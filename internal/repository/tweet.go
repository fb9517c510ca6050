package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

// TweetRepository defines persistence and feed operations for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	ListByOwner(ctx context.Context, owner *models.User, requesterID uint, page, limit int) (*models.TweetFeed, error)
	Update(ctx context.Context, tweet *models.Tweet) error
	Delete(ctx context.Context, id uint) error
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new TweetRepository.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).First(&tweet, id).Error; err != nil {
		return nil, lookupError(err, "Tweet", id)
	}
	return &tweet, nil
}

// ListByOwner returns the owner's tweets, most recently updated first, each
// with its like total computed in the same query.
func (r *tweetRepository) ListByOwner(ctx context.Context, owner *models.User, requesterID uint, page, limit int) (feed *models.TweetFeed, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListByOwner", "tweets")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_by_owner", "tweets")()

	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Tweet{}).Where("owner_id = ?", owner.ID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	tweets := make([]models.TweetView, 0)
	if err := db.Model(&models.Tweet{}).
		Select("tweets.*, (SELECT COUNT(*) FROM likes WHERE likes.target_type = ? AND likes.target_id = tweets.id) AS total_likes",
			models.LikeTargetTweet).
		Where("owner_id = ?", owner.ID).
		Order("updated_at DESC, id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Scan(&tweets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.TweetFeed{
		Tweets: tweets,
		TweetedBy: models.TweetAuthor{
			UserSummary:  owner.Summary(),
			IsTweetOwner: requesterID != 0 && requesterID == owner.ID,
		},
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

func (r *tweetRepository) Update(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Save(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

var errTweetGone = errors.New("tweet already deleted")

// Delete removes the tweet and its likes atomically.
func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", models.LikeTargetTweet, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tweet{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errTweetGone
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errTweetGone):
		return models.NewNotFoundError("Tweet", id)
	default:
		return models.NewInternalError(err)
	}
}
