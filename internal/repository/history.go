package repository

import (
	"context"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryRepository records and lists what a user watched.
type HistoryRepository interface {
	Record(ctx context.Context, userID, videoID uint) error
	List(ctx context.Context, userID uint, page, limit int) ([]models.WatchedVideo, int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Record upserts the (user, video) row so the latest watch wins.
func (r *historyRepository) Record(ctx context.Context, userID, videoID uint) error {
	entry := &models.WatchHistory{UserID: userID, VideoID: videoID, WatchedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type watchedRow struct {
	models.Video
	WatchedAt time.Time
}

// List returns watched videos that are still visible to the user, most recent first.
func (r *historyRepository) List(ctx context.Context, userID uint, page, limit int) (items []models.WatchedVideo, total int64, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "watch_histories")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_history", "watch_histories")()

	db := readDB(r.db).WithContext(ctx)
	filter := func(tx *gorm.DB) *gorm.DB {
		return tx.Table("watch_histories").
			Joins("JOIN videos ON videos.id = watch_histories.video_id").
			Where("watch_histories.user_id = ?", userID).
			Where("(videos.is_published = ? OR videos.owner_id = ?)", true, userID)
	}

	if err := db.Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var rows []watchedRow
	if err := db.Scopes(filter).
		Select("videos.*, watch_histories.watched_at AS watched_at").
		Order("watch_histories.watched_at DESC, videos.id DESC").
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

	items = make([]models.WatchedVideo, 0, len(rows))
	for i, row := range rows {
		items = append(items, models.WatchedVideo{VideoFeedItem: feed[i], WatchedAt: row.WatchedAt})
	}
	return items, total, nil
}
