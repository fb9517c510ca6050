package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID, requesterID uint, page, limit int) (*models.CommentPage, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	View(ctx context.Context, comment *models.Comment, requesterID uint) (*models.CommentView, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

// ListByVideo returns one flat record per comment, newest first, with the
// author, like total and the requester's own like and ownership flags.
func (r *commentRepository) ListByVideo(ctx context.Context, videoID, requesterID uint, page, limit int) (result *models.CommentPage, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListByVideo", "comments")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list_by_video", "comments")()

	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var comments []models.Comment
	if err := db.Where("video_id = ?", videoID).
		Order("created_at DESC, id DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	views, err := r.compose(db, comments, requesterID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.CommentPage{Comments: views, TotalCount: total, Page: page, Limit: limit}, nil
}

// View composes the read model for a single comment, e.g. right after it was written.
func (r *commentRepository) View(ctx context.Context, comment *models.Comment, requesterID uint) (*models.CommentView, error) {
	views, err := r.compose(r.db.WithContext(ctx), []models.Comment{*comment}, requesterID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &views[0], nil
}

func (r *commentRepository) compose(db *gorm.DB, comments []models.Comment, requesterID uint) ([]models.CommentView, error) {
	ids := make([]uint, 0, len(comments))
	ownerIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		ownerIDs = append(ownerIDs, c.OwnerID)
	}

	owners, err := userSummaries(db, ownerIDs)
	if err != nil {
		return nil, err
	}
	counts, err := likeCounts(db, models.LikeTargetComment, ids)
	if err != nil {
		return nil, err
	}
	liked, err := likedTargets(db, requesterID, models.LikeTargetComment, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{
			ID:               c.ID,
			Content:          c.Content,
			VideoID:          c.VideoID,
			Owner:            owners[c.OwnerID],
			LikeCount:        counts[c.ID],
			LikedByRequester: liked[c.ID],
			IsOwner:          c.IsOwnedBy(requesterID),
			CreatedAt:        c.CreatedAt,
			UpdatedAt:        c.UpdatedAt,
		})
	}
	return views, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

var errCommentGone = errors.New("comment already deleted")

// Delete removes the comment and its likes atomically.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", models.LikeTargetComment, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCommentGone
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errCommentGone):
		return models.NewNotFoundError("Comment", id)
	default:
		return models.NewInternalError(err)
	}
}
