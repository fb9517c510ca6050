package repository

import (
	"context"
	"errors"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines persistence operations for playlists and their entries.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	Detail(ctx context.Context, playlist *models.Playlist, requesterID uint) (*models.PlaylistDetail, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.PlaylistSummary, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uint) error
	AddVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new PlaylistRepository.
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		return nil, lookupError(err, "Playlist", id)
	}
	return &playlist, nil
}

// Detail returns the playlist's videos in position order. Videos the
// requester may not see are left out of both the list and the totals.
func (r *playlistRepository) Detail(ctx context.Context, playlist *models.Playlist, requesterID uint) (detail *models.PlaylistDetail, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Detail", "playlists")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("playlist_detail", "playlists")()

	db := r.db.WithContext(ctx)

	var videos []models.Video
	if err := db.Model(&models.Video{}).
		Select("videos.*").
		Joins("JOIN playlist_videos ON playlist_videos.video_id = videos.id").
		Where("playlist_videos.playlist_id = ?", playlist.ID).
		Where("(videos.is_published = ? OR videos.owner_id = ?)", true, requesterID).
		Order("playlist_videos.position ASC").
		Find(&videos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	items, err := feedItems(db, videos)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	owners, err := userSummaries(db, []uint{playlist.OwnerID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	detail = &models.PlaylistDetail{
		Playlist:    *playlist,
		Owner:       owners[playlist.OwnerID],
		Videos:      items,
		TotalVideos: len(items),
	}
	for _, v := range videos {
		detail.TotalViews += v.Views
	}
	return detail, nil
}

type playlistCount struct {
	PlaylistID uint
	Total      int64
}

func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.PlaylistSummary, error) {
	db := readDB(r.db).WithContext(ctx)

	var playlists []models.Playlist
	if err := db.Where("owner_id = ?", ownerID).Order("updated_at DESC, id DESC").Find(&playlists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}
	counts := make(map[uint]int64, len(ids))
	if len(ids) > 0 {
		var rows []playlistCount
		if err := db.Model(&models.PlaylistVideo{}).
			Select("playlist_id, COUNT(*) AS total").
			Where("playlist_id IN ?", ids).
			Group("playlist_id").
			Scan(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, row := range rows {
			counts[row.PlaylistID] = row.Total
		}
	}

	out := make([]models.PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, models.PlaylistSummary{Playlist: p, TotalVideos: counts[p.ID]})
	}
	return out, nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Save(playlist).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

var (
	errPlaylistGone     = errors.New("playlist already deleted")
	errPlaylistEntryDup = errors.New("video already in playlist")
	errPlaylistNoEntry  = errors.New("video not in playlist")
)

func (r *playlistRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Playlist{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPlaylistGone
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPlaylistGone):
		return models.NewNotFoundError("Playlist", id)
	default:
		return models.NewInternalError(err)
	}
}

// lockPlaylist takes a row lock on the playlist so entry mutations on the
// same playlist run one at a time.
func lockPlaylist(tx *gorm.DB, playlistID uint) error {
	var playlist models.Playlist
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&playlist, playlistID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errPlaylistGone
	}
	return err
}

// AddVideo appends the video at the end of the playlist.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPlaylist(tx, playlistID); err != nil {
			return err
		}
		var maxPos int
		if err := tx.Model(&models.PlaylistVideo{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		entry := &models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID, Position: maxPos + 1}
		if err := tx.Create(entry).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errPlaylistEntryDup
			}
			return err
		}
		return tx.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("updated_at", time.Now()).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPlaylistEntryDup):
		return models.NewConflictError("Video is already in the playlist")
	case errors.Is(err, errPlaylistGone):
		return models.NewNotFoundError("Playlist", playlistID)
	default:
		return models.NewInternalError(err)
	}
}

// RemoveVideo deletes the entry and closes the gap it leaves in positions.
func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPlaylist(tx, playlistID); err != nil {
			return err
		}
		var entry models.PlaylistVideo
		if err := tx.Where("playlist_id = ? AND video_id = ?", playlistID, videoID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPlaylistNoEntry
			}
			return err
		}
		if err := tx.Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
			Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PlaylistVideo{}).
			Where("playlist_id = ? AND position > ?", playlistID, entry.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("updated_at", time.Now()).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPlaylistNoEntry):
		return models.NewNotFoundError("Playlist entry", videoID)
	case errors.Is(err, errPlaylistGone):
		return models.NewNotFoundError("Playlist", playlistID)
	default:
		return models.NewInternalError(err)
	}
}
