package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vidtube/internal/auth"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r-Secret-Pass"

func registerUser(t *testing.T, env *testEnv, username string) *models.User {
	t.Helper()
	user, err := env.auth.Register(context.Background(), RegisterInput{
		FullName:   "User " + username,
		Email:      username + "@example.com",
		Username:   username,
		Password:   strongPassword,
		AvatarPath: writeTempPNG(t, "avatar.png"),
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	avatar := writeTempPNG(t, "avatar.png")
	cover := writeTempPNG(t, "cover.png")
	user, err := env.auth.Register(ctx, RegisterInput{
		FullName:   "  Ada Lovelace ",
		Email:      "ADA@Example.com",
		Username:   "Ada",
		Password:   strongPassword,
		AvatarPath: avatar,
		CoverPath:  cover,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "ada", user.Username)
	assert.NotEqual(t, strongPassword, user.Password)
	assert.True(t, auth.VerifyPassword(user.Password, strongPassword))
	assert.True(t, env.store.Has(user.AvatarKey))
	assert.True(t, env.store.Has(user.CoverKey))
	assert.Contains(t, user.Avatar, "https://cdn.test/avatars/")
	assert.False(t, fileExists(avatar))
	assert.False(t, fileExists(cover))

	t.Run("duplicate username", func(t *testing.T) {
		avatar := writeTempPNG(t, "avatar.png")
		_, err := env.auth.Register(ctx, RegisterInput{
			FullName: "Other", Email: "other@example.com", Username: "ada",
			Password: strongPassword, AvatarPath: avatar,
		})
		assertCode(t, err, models.CodeConflict)
		assert.False(t, fileExists(avatar))
		assert.Equal(t, 2, env.store.Len())
	})

	t.Run("missing avatar", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{
			FullName: "Bob", Email: "bob@example.com", Username: "bob", Password: strongPassword,
		})
		assertValidationError(t, err)
	})

	t.Run("weak password discards uploads", func(t *testing.T) {
		avatar := writeTempPNG(t, "avatar.png")
		_, err := env.auth.Register(ctx, RegisterInput{
			FullName: "Bob", Email: "bob@example.com", Username: "bob",
			Password: "short", AvatarPath: avatar,
		})
		assertValidationError(t, err)
		assert.False(t, fileExists(avatar))
	})
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerUser(t, env, "grace")

	_, err := env.auth.Login(ctx, LoginInput{Username: "grace", Password: "Wrong-Password-1"})
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.auth.Login(ctx, LoginInput{Password: strongPassword})
	assertValidationError(t, err)

	byEmail, err := env.auth.Login(ctx, LoginInput{Email: "GRACE@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.AccessToken)

	session, err := env.auth.Login(ctx, LoginInput{Username: "grace", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "grace", session.User.Username)

	// The earlier login's refresh token was replaced.
	_, err = env.auth.Refresh(ctx, byEmail.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)

	rotated, err := env.auth.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	_, err = env.auth.Refresh(ctx, session.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.auth.Refresh(ctx, rotated.AccessToken)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env, "linus")

	err := env.auth.ChangePassword(ctx, ChangePasswordInput{UserID: user.ID, OldPassword: "Not-The-Old-1!", NewPassword: "Brand-New-Pass-2"})
	assertValidationError(t, err)

	err = env.auth.ChangePassword(ctx, ChangePasswordInput{UserID: user.ID, OldPassword: strongPassword, NewPassword: "weak"})
	assertValidationError(t, err)

	session, err := env.auth.Login(ctx, LoginInput{Username: "linus", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, env.auth.ChangePassword(ctx, ChangePasswordInput{
		UserID: user.ID, OldPassword: strongPassword, NewPassword: "Brand-New-Pass-2",
	}))

	// Sessions from before the change cannot be refreshed.
	_, err = env.auth.Refresh(ctx, session.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.auth.Login(ctx, LoginInput{Username: "linus", Password: strongPassword})
	assertCode(t, err, models.CodeUnauthorized)
	_, err = env.auth.Login(ctx, LoginInput{Username: "linus", Password: "Brand-New-Pass-2"})
	require.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	db := testutil.NewTestDB(t)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "access-secret-for-tests-only-0123456789",
		RefreshSecret: "refresh-secret-for-tests-only-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}, rdb)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(userRepo, tokens, storage.NewMemoryStorage("https://cdn.test"))
	ctx := context.Background()

	_, err = svc.Register(ctx, RegisterInput{
		FullName: "Margaret", Email: "margaret@example.com", Username: "margaret",
		Password: strongPassword, AvatarPath: writeTempPNG(t, "avatar.png"),
	})
	require.NoError(t, err)
	session, err := svc.Login(ctx, LoginInput{Username: "margaret", Password: strongPassword})
	require.NoError(t, err)

	claims, err := tokens.VerifyAccessToken(ctx, session.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = tokens.VerifyAccessToken(ctx, session.AccessToken)
	assert.Error(t, err)

	stored, err := userRepo.GetByID(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestAuthService_ConcurrentRefreshSucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerUser(t, env, "ada")

	session, err := env.auth.Login(ctx, LoginInput{Username: "ada", Password: strongPassword})
	require.NoError(t, err)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rotated  []*Session
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := env.auth.Refresh(ctx, session.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.True(t, models.HasCode(err, models.CodeUnauthorized), "unexpected error: %v", err)
				rejected++
				return
			}
			rotated = append(rotated, next)
		}()
	}
	wg.Wait()

	require.Len(t, rotated, 1)
	assert.Equal(t, n-1, rejected)

	var tokens []string
	require.NoError(t, env.db.Model(&models.User{}).
		Where("username = ?", "ada").
		Pluck("refresh_token", &tokens).Error)
	require.Len(t, tokens, 1)
	assert.Equal(t, rotated[0].RefreshToken, tokens[0])
}
