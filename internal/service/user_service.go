package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/validation"
)

type UserService struct {
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	uploader    storage.Uploader
}

type UpdateAccountInput struct {
	UserID   uint
	FullName string
	Email    string
}

func NewUserService(userRepo repository.UserRepository, historyRepo repository.HistoryRepository, uploader storage.Uploader) *UserService {
	return &UserService{userRepo: userRepo, historyRepo: historyRepo, uploader: uploader}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := validation.NormalizeEmail(in.Email)
	if fullName == "" || email == "" {
		return nil, models.NewValidationError("Full name and email are required")
	}
	if err := validation.ValidateFullName(fullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar replaces the avatar and deletes the previous object.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.replaceImage(ctx, userID, localPath, storage.KindAvatar)
}

// UpdateCoverImage replaces the cover image and deletes the previous object.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.replaceImage(ctx, userID, localPath, storage.KindCover)
}

func (s *UserService) replaceImage(ctx context.Context, userID uint, localPath string, kind storage.Kind) (*models.User, error) {
	if localPath == "" {
		return nil, models.NewValidationError(string(kind) + " file is missing")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		discardTemp(localPath)
		return nil, err
	}

	upload, err := s.uploader.Upload(ctx, localPath, kind)
	if err != nil {
		return nil, err
	}

	var oldKey string
	if kind == storage.KindAvatar {
		oldKey = user.AvatarKey
		user.Avatar, user.AvatarKey = upload.URL, upload.Key
	} else {
		oldKey = user.CoverKey
		user.CoverImage, user.CoverKey = upload.URL, upload.Key
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		deleteObjects(ctx, s.uploader, upload.Key)
		return nil, err
	}
	deleteObjects(ctx, s.uploader, oldKey)
	return user, nil
}

func (s *UserService) ChannelProfile(ctx context.Context, username string, requesterID uint) (*models.ChannelProfile, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError("Username is missing")
	}
	return s.userRepo.ChannelProfile(ctx, username, requesterID)
}

func (s *UserService) WatchHistory(ctx context.Context, userID uint, page, limit int) (*models.WatchHistoryPage, error) {
	videos, total, err := s.historyRepo.List(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return &models.WatchHistoryPage{Videos: videos, TotalCount: total, Page: page, Limit: limit}, nil
}
