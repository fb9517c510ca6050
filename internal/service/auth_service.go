package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"vidtube/internal/auth"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/validation"
)

// AuthService registers users and manages their sessions.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	uploader storage.Uploader
}

// RegisterInput carries a signup form. AvatarPath is required, CoverPath optional;
// both are temp files owned by the uploader once passed in.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// LoginInput identifies a user by email or username.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

type ChangePasswordInput struct {
	UserID      uint
	OldPassword string
	NewPassword string
}

// Session is the result of a successful login or refresh.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, uploader storage.Uploader) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, uploader: uploader}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Username = validation.NormalizeUsername(in.Username)

	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		discardTemp(in.AvatarPath, in.CoverPath)
		return nil, models.NewValidationError("All fields are required")
	}
	for _, check := range []error{
		validation.ValidateFullName(in.FullName),
		validation.ValidateEmail(in.Email),
		validation.ValidateUsername(in.Username),
		validation.ValidatePassword(in.Password),
	} {
		if check != nil {
			discardTemp(in.AvatarPath, in.CoverPath)
			return nil, models.NewValidationError(check.Error())
		}
	}
	if in.AvatarPath == "" {
		discardTemp(in.CoverPath)
		return nil, models.NewValidationError("Avatar file is required")
	}

	existing, err := s.userRepo.FindByLogin(ctx, in.Email, in.Username)
	if err != nil {
		discardTemp(in.AvatarPath, in.CoverPath)
		return nil, err
	}
	if existing != nil {
		discardTemp(in.AvatarPath, in.CoverPath)
		return nil, models.NewConflictError("User with this email or username already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		discardTemp(in.AvatarPath, in.CoverPath)
		return nil, models.NewInternalError(err)
	}

	avatar, err := s.uploader.Upload(ctx, in.AvatarPath, storage.KindAvatar)
	if err != nil {
		discardTemp(in.CoverPath)
		return nil, err
	}
	user := &models.User{
		FullName:  in.FullName,
		Email:     in.Email,
		Username:  in.Username,
		Password:  hash,
		Avatar:    avatar.URL,
		AvatarKey: avatar.Key,
	}
	if in.CoverPath != "" {
		cover, err := s.uploader.Upload(ctx, in.CoverPath, storage.KindCover)
		if err != nil {
			deleteObjects(ctx, s.uploader, avatar.Key)
			return nil, err
		}
		user.CoverImage = cover.URL
		user.CoverKey = cover.Key
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		deleteObjects(ctx, s.uploader, user.AvatarKey, user.CoverKey)
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := validation.NormalizeEmail(in.Email)
	username := validation.NormalizeUsername(in.Username)
	if email == "" && username == "" {
		return nil, models.NewValidationError("Email or username is required")
	}
	if in.Password == "" {
		return nil, models.NewValidationError("Password is required")
	}

	user, err := s.userRepo.FindByLogin(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.Password, in.Password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.startSession(ctx, user)
}

// Logout forgets the stored refresh token and revokes the presented access token.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.userRepo.SetRefreshToken(ctx, claims.UserID, ""); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke access token",
			slog.String("jti", claims.JTI), slog.String("error", err.Error()))
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new token pair. The presented
// token must match the one stored for the user, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, models.NewUnauthorizedError("Refresh token is required")
	}
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, errRefreshUsed
	}
	return s.rotateSession(ctx, user, refreshToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return models.NewValidationError("Old and new password are required")
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.Password, in.OldPassword) {
		return models.NewValidationError("Invalid old password")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	// Sessions issued under the old password can no longer be refreshed.
	return s.userRepo.SetRefreshToken(ctx, user.ID, "")
}

var errRefreshUsed = models.NewUnauthorizedError("Refresh token is expired or used")

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, session.RefreshToken); err != nil {
		return nil, err
	}
	return session, nil
}

// rotateSession replaces previous with a fresh pair only if previous is
// still the stored refresh token.
func (s *AuthService) rotateSession(ctx context.Context, user *models.User, previous string) (*Session, error) {
	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.RotateRefreshToken(ctx, user.ID, previous, session.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenMismatch) {
			return nil, errRefreshUsed
		}
		return nil, err
	}
	return session, nil
}

func (s *AuthService) issueSession(user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.RefreshToken = refresh
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
