package service

import (
	"context"
	"testing"

	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice")
	testutil.CreateUser(t, env.db, "bob")

	_, err := env.users.UpdateAccount(ctx, UpdateAccountInput{UserID: alice.ID, FullName: "", Email: "a@example.com"})
	assertValidationError(t, err)
	_, err = env.users.UpdateAccount(ctx, UpdateAccountInput{UserID: alice.ID, FullName: "Alice", Email: "not-an-email"})
	assertValidationError(t, err)

	_, err = env.users.UpdateAccount(ctx, UpdateAccountInput{UserID: alice.ID, FullName: "Alice", Email: "bob@example.com"})
	assertCode(t, err, "CONFLICT")

	updated, err := env.users.UpdateAccount(ctx, UpdateAccountInput{UserID: alice.ID, FullName: " Alice A. ", Email: "Alice.New@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.FullName)
	assert.Equal(t, "alice.new@example.com", updated.Email)
}

func TestUserService_ReplaceImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env, "painter")
	firstAvatar := user.AvatarKey

	updated, err := env.users.UpdateAvatar(ctx, user.ID, writeTempPNG(t, "new-avatar.png"))
	require.NoError(t, err)
	assert.NotEqual(t, firstAvatar, updated.AvatarKey)
	assert.False(t, env.store.Has(firstAvatar))
	assert.True(t, env.store.Has(updated.AvatarKey))

	updated, err = env.users.UpdateCoverImage(ctx, user.ID, writeTempPNG(t, "cover.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, updated.CoverImage)
	assert.True(t, env.store.Has(updated.CoverKey))

	_, err = env.users.UpdateAvatar(ctx, user.ID, "")
	assertValidationError(t, err)

	bad := writeTempFile(t, "broken.png", []byte("nope"))
	_, err = env.users.UpdateAvatar(ctx, user.ID, bad)
	assertValidationError(t, err)
	assert.False(t, fileExists(bad))

	current, err := env.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.AvatarKey, current.AvatarKey)
}

func TestUserService_ChannelProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, env.db, "creator")
	fan := testutil.CreateUser(t, env.db, "fan")
	testutil.Subscribe(t, env.db, fan.ID, creator.ID)

	profile, err := env.users.ChannelProfile(ctx, " Creator ", fan.ID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, profile.ID)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = env.users.ChannelProfile(ctx, "fan", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.False(t, profile.IsSubscribed)

	_, err = env.users.ChannelProfile(ctx, "ghost", 0)
	assertNotFoundError(t, err)
	_, err = env.users.ChannelProfile(ctx, "  ", 0)
	assertValidationError(t, err)
}
