package repository

import (
	"context"
	"errors"
	"fmt"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

var videoSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// IsVideoSortField reports whether field may be used as a feed sort key.
func IsVideoSortField(field string) bool {
	_, ok := videoSortColumns[field]
	return ok
}

// VideoListQuery selects a page of the public video feed.
type VideoListQuery struct {
	Page       int
	Limit      int
	Query      string
	SortBy     string
	Descending bool
	OwnerID    uint
}

// VideoRepository defines persistence and feed operations for videos.
type VideoRepository interface {
	ListPublished(ctx context.Context, q VideoListQuery) (*models.VideoPage, error)
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	Detail(ctx context.Context, video *models.Video, requesterID uint) (*models.VideoDetail, error)
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint, page, limit int) (*models.ChannelVideoPage, error)
	ChannelStats(ctx context.Context, ownerID uint) (*models.ChannelStats, error)
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// ListPublished composes the public feed: filter, count, sort, page, then
// one batched owner lookup.
func (r *videoRepository) ListPublished(ctx context.Context, q VideoListQuery) (page *models.VideoPage, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListPublished", "videos")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_published", "videos")()

	column, ok := videoSortColumns[q.SortBy]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("Unsupported sortBy %q", q.SortBy))
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	db := readDB(r.db).WithContext(ctx)
	filter := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("is_published = ?", true)
		if q.OwnerID != 0 {
			tx = tx.Where("owner_id = ?", q.OwnerID)
		}
		if q.Query != "" {
			pattern := containsPattern(q.Query)
			tx = tx.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return tx
	}

	var total int64
	if err := db.Model(&models.Video{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var videos []models.Video
	if err := db.Scopes(filter).
		Order(fmt.Sprintf("%s %s, id %s", column, direction, direction)).
		Offset(offset(q.Page, q.Limit)).
		Limit(q.Limit).
		Find(&videos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	items, err := feedItems(db, videos)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.VideoPage{
		Videos:     items,
		TotalCount: total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

func (r *videoRepository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, lookupError(err, "Video", id)
	}
	return &video, nil
}

// Detail enriches a loaded video with its owner, like and subscription state.
func (r *videoRepository) Detail(ctx context.Context, video *models.Video, requesterID uint) (*models.VideoDetail, error) {
	db := r.db.WithContext(ctx)
	detail := &models.VideoDetail{Video: *video}

	owners, err := userSummaries(db, []uint{video.OwnerID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	detail.Owner = owners[video.OwnerID]

	counts, err := likeCounts(db, models.LikeTargetVideo, []uint{video.ID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	detail.LikeCount = counts[video.ID]

	liked, err := likedTargets(db, requesterID, models.LikeTargetVideo, []uint{video.ID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	detail.IsLiked = liked[video.ID]

	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", video.OwnerID).
		Count(&detail.SubscribersCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if requesterID != 0 {
		var n int64
		if err := db.Model(&models.Subscription{}).
			Where("subscriber_id = ? AND channel_id = ?", requesterID, video.OwnerID).
			Count(&n).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		detail.IsSubscribed = n > 0
	}
	return detail, nil
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes the editable columns only. Views are owned by IncrementViews.
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).
		Model(video).
		Select("title", "description", "thumbnail", "thumbnail_key", "is_published").
		Updates(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

var errVideoGone = errors.New("video already deleted")

// Delete removes the video together with its comments, every like pointing
// at either, its playlist entries and watch history, in one transaction.
func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("video_id = ?", id)
		if err := tx.Where("target_type = ? AND target_id IN (?)", models.LikeTargetComment, commentIDs).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.LikeTargetVideo, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.WatchHistory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Video{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errVideoGone
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errVideoGone):
		return models.NewNotFoundError("Video", id)
	default:
		return models.NewInternalError(err)
	}
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByOwner returns every video of the channel, published or not, with
// like and comment counts, newest first.
func (r *videoRepository) ListByOwner(ctx context.Context, ownerID uint, page, limit int) (result *models.ChannelVideoPage, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListByOwner", "videos")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_by_owner", "videos")()

	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Video{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var videos []models.Video
	if err := db.Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&videos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	likes, err := likeCounts(db, models.LikeTargetVideo, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	comments, err := commentCounts(db, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	rows := make([]models.ChannelVideo, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, models.ChannelVideo{Video: v, LikeCount: likes[v.ID], CommentCount: comments[v.ID]})
	}
	return &models.ChannelVideoPage{Videos: rows, TotalCount: total, Page: page, Limit: limit}, nil
}

// ChannelStats aggregates lifetime totals over all of the owner's videos.
func (r *videoRepository) ChannelStats(ctx context.Context, ownerID uint) (*models.ChannelStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.ChannelStats{}

	if err := db.Model(&models.Video{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(views), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Video{}).Where("owner_id = ?", ownerID).Count(&stats.TotalVideos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Subscription{}).Where("channel_id = ?", ownerID).Count(&stats.TotalSubscribers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	owned := db.Model(&models.Video{}).Select("id").Where("owner_id = ?", ownerID)
	if err := db.Model(&models.Like{}).
		Where("target_type = ? AND target_id IN (?)", models.LikeTargetVideo, owned).
		Count(&stats.TotalLikes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Comment{}).
		Where("video_id IN (?)", owned).
		Count(&stats.TotalComments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
