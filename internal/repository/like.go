package repository

import (
	"context"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository toggles likes and serves the liked-videos feed.
type LikeRepository interface {
	Toggle(ctx context.Context, userID uint, target models.LikeTarget, targetID uint) (*models.LikeToggleResult, error)
	Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error)
	ListLikedVideos(ctx context.Context, userID uint, page, limit int) ([]models.LikedVideo, int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle deletes the like when present, otherwise inserts it. The unique
// index on (liked_by_id, target_type, target_id) arbitrates concurrent
// toggles: an insert that lands on an existing row reports a conflict.
func (r *likeRepository) Toggle(ctx context.Context, userID uint, target models.LikeTarget, targetID uint) (*models.LikeToggleResult, error) {
	db := r.db.WithContext(ctx)

	res := db.Where("liked_by_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID).
		Delete(&models.Like{})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		observability.ToggleOutcomes.WithLabelValues("like", "removed").Inc()
		return &models.LikeToggleResult{Liked: false}, nil
	}

	like := &models.Like{LikedByID: userID, TargetType: target, TargetID: targetID}
	res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.ToggleOutcomes.WithLabelValues("like", "conflict").Inc()
		return nil, models.NewConflictError("Like was toggled concurrently, retry")
	}
	observability.ToggleOutcomes.WithLabelValues("like", "added").Inc()
	return &models.LikeToggleResult{Liked: true, Like: like}, nil
}

func (r *likeRepository) Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", target, targetID).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

type likedVideoRow struct {
	models.Video
	LikedAt time.Time
}

// ListLikedVideos returns videos the user liked that are still visible to
// them, most recently liked first.
func (r *likeRepository) ListLikedVideos(ctx context.Context, userID uint, page, limit int) (items []models.LikedVideo, total int64, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListLikedVideos", "likes")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_liked_videos", "likes")()

	db := readDB(r.db).WithContext(ctx)
	filter := func(tx *gorm.DB) *gorm.DB {
		return tx.Table("likes").
			Joins("JOIN videos ON videos.id = likes.target_id").
			Where("likes.liked_by_id = ? AND likes.target_type = ?", userID, models.LikeTargetVideo).
			Where("(videos.is_published = ? OR videos.owner_id = ?)", true, userID)
	}

	if err := db.Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var rows []likedVideoRow
	if err := db.Scopes(filter).
		Select("videos.*, likes.created_at AS liked_at").
		Order("likes.created_at DESC, likes.id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	videos := make([]models.Video, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, row.Video)
	}
	feed, err := feedItems(db, videos)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	items = make([]models.LikedVideo, 0, len(rows))
	for i, row := range rows {
		items = append(items, models.LikedVideo{VideoFeedItem: feed[i], LikedAt: row.LikedAt})
	}
	return items, total, nil
}
