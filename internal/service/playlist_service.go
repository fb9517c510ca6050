package service

import (
	"context"
	"fmt"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

const maxPlaylistNameLen = 150

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	userRepo     repository.UserRepository
}

type CreatePlaylistInput struct {
	UserID      uint
	Name        string
	Description string
}

// UpdatePlaylistInput changes only the non-nil fields.
type UpdatePlaylistInput struct {
	UserID      uint
	PlaylistID  uint
	Name        *string
	Description *string
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository, userRepo repository.UserRepository) *PlaylistService {
	return &PlaylistService{playlistRepo: playlistRepo, videoRepo: videoRepo, userRepo: userRepo}
}

func (s *PlaylistService) CreatePlaylist(ctx context.Context, in CreatePlaylistInput) (*models.Playlist, error) {
	name, err := normalizePlaylistName(in.Name)
	if err != nil {
		return nil, err
	}
	playlist := &models.Playlist{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     in.UserID,
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) GetPlaylist(ctx context.Context, playlistID, requesterID uint) (*models.PlaylistDetail, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return s.playlistRepo.Detail(ctx, playlist, requesterID)
}

func (s *PlaylistService) ListUserPlaylists(ctx context.Context, userID uint) ([]models.PlaylistSummary, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}
	return s.playlistRepo.ListByOwner(ctx, userID)
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, in UpdatePlaylistInput) (*models.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, in.UserID, in.PlaylistID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := normalizePlaylistName(*in.Name)
		if err != nil {
			return nil, err
		}
		playlist.Name = name
	}
	if in.Description != nil {
		playlist.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) DeletePlaylist(ctx context.Context, userID, playlistID uint) error {
	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlist.ID)
}

// AddVideo appends a video the owner can see to the end of the playlist.
func (s *PlaylistService) AddVideo(ctx context.Context, userID, playlistID, videoID uint) (*models.PlaylistDetail, error) {
	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(userID) {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	if err := s.playlistRepo.AddVideo(ctx, playlist.ID, video.ID); err != nil {
		return nil, err
	}
	return s.playlistRepo.Detail(ctx, playlist, userID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uint) (*models.PlaylistDetail, error) {
	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	if err := s.playlistRepo.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		return nil, err
	}
	return s.playlistRepo.Detail(ctx, playlist, userID)
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, userID, playlistID uint) (*models.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if !playlist.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You can only modify your own playlists")
	}
	return playlist, nil
}

func normalizePlaylistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("Playlist name is required")
	}
	if len([]rune(name)) > maxPlaylistNameLen {
		return "", models.NewValidationError(fmt.Sprintf("Playlist name too long (max %d characters)", maxPlaylistNameLen))
	}
	return name, nil
}
