package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and channel profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByLogin(ctx context.Context, email, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id uint, token string) error
	RotateRefreshToken(ctx context.Context, id uint, current, next string) error
	Exists(ctx context.Context, id uint) (bool, error)
	ChannelProfile(ctx context.Context, username string, requesterID uint) (*models.ChannelProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupError(err, "Channel", username)
	}
	return &user, nil
}

// FindByLogin returns the user matching either identifier, or nil when none does.
func (r *userRepository) FindByLogin(ctx context.Context, email, username string) (*models.User, error) {
	if email == "" && username == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("(email <> '' AND email = ?) OR (username <> '' AND username = ?)", email, username).
		Order("id").
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes profile and credential columns. The refresh token is only
// touched through SetRefreshToken and RotateRefreshToken.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).
		Model(user).
		Select("email", "full_name", "avatar", "avatar_key", "cover_image", "cover_key", "password").
		Updates(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id uint, token string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RotateRefreshToken swaps current for next in a single conditional update.
// Of two callers presenting the same token, only one succeeds.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id uint, current, next string) error {
	if current == "" {
		return ErrRefreshTokenMismatch
	}
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		UpdateColumn("refresh_token", next)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenMismatch
	}
	return nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ChannelProfile composes the public channel page: summary, both subscription
// counts and whether the requester follows the channel.
func (r *userRepository) ChannelProfile(ctx context.Context, username string, requesterID uint) (*models.ChannelProfile, error) {
	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	profile := &models.ChannelProfile{
		UserSummary: user.Summary(),
		CoverImage:  user.CoverImage,
	}
	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", user.ID).
		Count(&profile.SubscribersCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", user.ID).
		Count(&profile.ChannelsSubscribedToCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if requesterID != 0 {
		var n int64
		if err := db.Model(&models.Subscription{}).
			Where("subscriber_id = ? AND channel_id = ?", requesterID, user.ID).
			Count(&n).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		profile.IsSubscribed = n > 0
	}
	return profile, nil
}
